package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dreamware/namesrv/internal/config"
)

// State is a step of the bootstrap sequence.
type State int32

const (
	StateStart State = iota
	StateArgsParsed
	StateConfigResolved
	StateDiagnosticExit
	StateConfigValidated
	StateLoggingReady
	StateControllerConstructed
	StateControllerInitialized
	StateRunning
	StateShuttingDown
	StateStopped
	StateFailed
)

var stateNames = [...]string{
	StateStart:                 "START",
	StateArgsParsed:            "ARGS_PARSED",
	StateConfigResolved:        "CONFIG_RESOLVED",
	StateDiagnosticExit:        "DIAGNOSTIC_EXIT",
	StateConfigValidated:       "CONFIG_VALIDATED",
	StateLoggingReady:          "LOGGING_READY",
	StateControllerConstructed: "CONTROLLER_CONSTRUCTED",
	StateControllerInitialized: "CONTROLLER_INITIALIZED",
	StateRunning:               "RUNNING",
	StateShuttingDown:          "SHUTTING_DOWN",
	StateStopped:               "STOPPED",
	StateFailed:                "FAILED",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Orchestrator drives the name server from raw arguments to a running
// controller and back to an exit code.
type Orchestrator struct {
	stdout        io.Writer
	stderr        io.Writer
	newController ControllerFactory
	initLogging   LoggingInitializer
	notify        SignalNotifier
	stopNotify    SignalStopper
	environment   func() config.Environment
	state         atomic.Int32
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithOutput sets the writers used before logging is ready.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *Orchestrator) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

func WithControllerFactory(f ControllerFactory) Option {
	return func(o *Orchestrator) { o.newController = f }
}

func WithLoggingInitializer(f LoggingInitializer) Option {
	return func(o *Orchestrator) { o.initLogging = f }
}

func WithSignalNotifier(n SignalNotifier) Option {
	return func(o *Orchestrator) { o.notify = n }
}

func WithSignalStopper(s SignalStopper) Option {
	return func(o *Orchestrator) { o.stopNotify = s }
}

// WithEnvironment replaces the process environment lookup.
func WithEnvironment(f func() config.Environment) Option {
	return func(o *Orchestrator) { o.environment = f }
}

// New creates an Orchestrator. A controller factory must be supplied with
// WithControllerFactory before Run reaches controller construction.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		initLogging: InitLogging,
		environment: config.LoadEnvironment,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current step of the bootstrap sequence.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
}

// Run boots the name server with args (without the program name), blocks
// until it has been shut down and returns the process exit code. Panics
// are recovered and reported as unexpected errors.
func (o *Orchestrator) Run(args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			code = o.exit(newError(UnexpectedError, fmt.Errorf("panic: %v", r)))
		}
	}()
	return o.exit(o.run(args))
}

func (o *Orchestrator) exit(err error) int {
	code := ExitCodeOf(err)
	if err == nil {
		return code
	}
	o.setState(StateFailed)

	fmt.Fprintln(o.stderr, err.Error())
	var e *Error
	if errors.As(err, &e) && e.Stack != "" {
		fmt.Fprintln(o.stderr, e.Stack)
	}
	return code
}

func (o *Orchestrator) run(args []string) error {
	opts, help, err := ParseOptions(args, o.stdout)
	if err != nil {
		return newError(ArgumentError, err)
	}
	if help {
		return nil
	}
	o.setState(StateArgsParsed)

	env := o.environment()
	res, err := Resolve(opts, env, o.stdout)
	if err != nil {
		return err
	}
	o.setState(StateConfigResolved)

	if opts.PrintConfigItem {
		if err := Report(o.stdout, res.Service, res.Transport); err != nil {
			return newError(UnexpectedError, err)
		}
		o.setState(StateDiagnosticExit)
		return nil
	}

	if err := Validate(res.Service); err != nil {
		fmt.Fprintln(o.stdout, HomeRemediation)
		return err
	}
	o.setState(StateConfigValidated)

	logger, err := o.initLogging(res.Service.Home, env.LogLevel)
	if err != nil {
		return newError(LoggingInitError, err)
	}
	defer func() { _ = logger.Sync() }()
	o.setState(StateLoggingReady)

	return o.serve(res, logger)
}

func (o *Orchestrator) serve(res *Resolution, logger *zap.Logger) error {
	if o.newController == nil {
		return errorf(UnexpectedError, "no controller factory configured")
	}
	sugar := logger.Sugar()

	LogConfig(sugar, res.Service, res.Transport)
	controller := o.newController(res.Service, res.Transport, logger)
	o.setState(StateControllerConstructed)

	if reg := controller.Configuration(); reg != nil {
		reg.RegisterConfig(res.Properties)
	}

	if !controller.Initialize() {
		controller.Shutdown()
		sugar.Errorw("Controller initialization failed")
		return errorf(ControllerInitError, "controller initialization failed")
	}
	o.setState(StateControllerInitialized)

	hook := NewShutdownHook(controller, logger)
	hook.Install(o.notify, o.stopNotify)

	if err := controller.Start(); err != nil {
		sugar.Errorw("Controller start failed", "error", err)
		hook.Run()
		return newError(UnexpectedError, fmt.Errorf("start controller: %w", err))
	}

	msg := fmt.Sprintf("The Name Server boot success. listenPort=%d", res.Transport.ListenPort)
	sugar.Info(msg)
	fmt.Fprintln(o.stdout, msg)
	o.setState(StateRunning)

	<-hook.Started()
	o.setState(StateShuttingDown)
	<-hook.Done()
	o.setState(StateStopped)
	return nil
}
