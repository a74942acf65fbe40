package core

// Logger is implemented by the logging services (console in DEV, Rollbar in PROD).
// Args may include wrapped errors, maps or a staff.User to attach to the report.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
