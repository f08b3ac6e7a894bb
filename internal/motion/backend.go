//go:build !gocv

package motion

func newBackgroundModel(p Params) (BackgroundModel, error) {
	return NewMOG2(p)
}
