// Package bootstrap turns the raw process arguments and environment into a
// running name server and maps every way that can fail to an exit code.
//
// # Sequence
//
// An Orchestrator walks a fixed sequence of states:
//
//	START -> ARGS_PARSED -> CONFIG_RESOLVED -> CONFIG_VALIDATED -> LOGGING_READY
//	      -> CONTROLLER_CONSTRUCTED -> CONTROLLER_INITIALIZED -> RUNNING
//	      -> SHUTTING_DOWN -> STOPPED
//
// With -p the sequence ends at DIAGNOSTIC_EXIT after the configuration has
// been printed; no logger or controller is ever created. Any failure moves
// the orchestrator to FAILED.
//
// # Exit codes
//
//	 0  normal exit, help, or the -p diagnostic
//	-1  bad arguments, unreadable config file, logging failure, start failure
//	-2  NAMESRV_HOME is not set
//	-3  the controller refused to initialize
//
// Failures carry a Kind through *Error; ExitCodeOf maps any error to its
// code.
//
// # Shutdown
//
// After the controller starts, a ShutdownHook is subscribed to SIGINT and
// SIGTERM. The hook shuts the controller down exactly once however many
// signals arrive, and Run returns once it has completed.
//
// # Usage
//
//	code := bootstrap.New(
//	    bootstrap.WithControllerFactory(factory),
//	).Run(os.Args[1:])
//	os.Exit(code)
package bootstrap
