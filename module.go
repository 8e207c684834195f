package dbglog

/*
module.go

Modules are named producers of log lines. A Module is a thin handle on a
Logger: it shares the logger's mask, display options and destinations and
only adds a "[name]" prefix in front of the message. Modules nest:

	db := logger.Module("db")      // [db]
	pool := db.Module("pool")      // [db/pool]

Every method checks the level before formatting, so disabled statements cost
one mask test.
*/

// Module creates a module named name on the logger.
func (l *Logger) Module(name string) *Module {
	return &Module{logger: l, name: name, prefix: "[" + name + "]", curLevel: LVL_INFO3}
}

// Module creates a child module named "parent/name".
func (m *Module) Module(name string) *Module {
	return m.logger.Module(m.name + "/" + name)
}

// Name returns the full module name ("parent/child").
func (m *Module) Name() string {
	return m.name
}

// Logger returns the logger the module writes to.
func (m *Module) Logger() *Logger {
	return m.logger
}

func (m *Module) Check(level Level) bool {
	return m.logger.Check(level)
}

func (m *Module) CheckOnce(level Level, guard *OnceGuard) bool {
	return m.logger.CheckOnce(level, guard)
}

// Log writes message with the module prefix. See Logger.Log.
func (m *Module) Log(level Level, message string, loc Location) bool {
	return m.logger.emit(level, m.prefix, message, loc)
}

func (m *Module) LogOnce(guard *OnceGuard, level Level, message string, loc Location) bool {
	return guard.Fire() && m.logger.emit(level, m.prefix, message, loc)
}

// Logf formats and logs the message, recording the caller as the location.
func (m *Module) Logf(level Level, format string, args ...any) bool {
	return m.logger.logf(1, level, m.prefix, format, args...)
}

func (m *Module) Debug(format string, args ...any) bool {
	return m.logger.logf(1, LVL_DEBUG, m.prefix, format, args...)
}

func (m *Module) Info(format string, args ...any) bool {
	return m.logger.logf(1, LVL_INFO3, m.prefix, format, args...)
}

func (m *Module) Warn(format string, args ...any) bool {
	return m.logger.logf(1, LVL_WARN2, m.prefix, format, args...)
}

func (m *Module) Error(format string, args ...any) bool {
	return m.logger.logf(1, LVL_ERR2, m.prefix, format, args...)
}

// Fail logs the message and returns it as an error. See Logger.Fail.
func (m *Module) Fail(level Level, format string, args ...any) error {
	return m.logger.fail(1, level, m.prefix, format, args...)
}
