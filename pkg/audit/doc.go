// Package audit records schema mutations: collection creation and every
// attempted cascading deletion, including rejected ones.
//
// Events are written through a Logger. FileLogger appends JSON lines to
// <dir>/audit.log and rotates by size; DBLogger inserts into the
// audit_events table; MultiLogger fans out to several sinks. Audit failures
// are reported to the caller, which logs them without failing the request.
//
//	logger, _ := audit.NewFileLogger(audit.FileLoggerConfig{BasePath: "/var/log/headless"})
//	event := audit.NewEvent(ctx, audit.EventCollectionDeleted, audit.StatusSuccess, "posts")
//	event.Subject = "ops"
//	logger.Log(ctx, event)
package audit
