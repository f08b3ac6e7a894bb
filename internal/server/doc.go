// Package server wires the motion detector service together and runs it.
//
// # Topology
//
//	IMAGE_RAW (websocket, upstream)
//	    -> transport.Subscriber
//	    -> pipeline.Pipeline (normalize, downsample, detect)
//	    -> transport.Hub
//	MOTION_IMAGE_RAW (websocket, downstream consumers)
//
// The Hub is served at "/MOTION_IMAGE_RAW" on Config.OutputAddr. The
// Subscriber connects to Config.InputURL.
//
// # Lifecycle
//
// New builds every component and fails if any of them cannot be created;
// such errors are fatal at startup. Run blocks until its context is
// cancelled, then stops the HTTP listener, disconnects consumers and logs the
// final pipeline statistics. There is no persisted state: the background
// model starts empty on every run.
//
// # Usage
//
//	srv, err := server.New(cfg, logger)
//	if err != nil {
//	    logger.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal(err)
//	}
package server
