package broker

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
)

// logrusAdapter routes watermill's internal logging through the application
// logger so broker events land in the same rotating file as everything else.
type logrusAdapter struct {
	entry *logrus.Entry
}

func newLogrusAdapter() watermill.LoggerAdapter {
	return &logrusAdapter{entry: logrus.NewEntry(logrus.StandardLogger())}
}

func (l *logrusAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.withFields(fields).WithError(err).Error(msg)
}

func (l *logrusAdapter) Info(msg string, fields watermill.LogFields) {
	l.withFields(fields).Info(msg)
}

func (l *logrusAdapter) Debug(msg string, fields watermill.LogFields) {
	l.withFields(fields).Debug(msg)
}

func (l *logrusAdapter) Trace(msg string, fields watermill.LogFields) {
	l.withFields(fields).Trace(msg)
}

func (l *logrusAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &logrusAdapter{entry: l.withFields(fields)}
}

func (l *logrusAdapter) withFields(fields watermill.LogFields) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	return l.entry.WithFields(logrus.Fields(fields))
}
