/*
Copyright (C) 2026  The RefPerSys-Go Authors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package heap

import (
	"github.com/refpersys/rpsheap/rpsval"
	"github.com/sirupsen/logrus"
)

// Logger is the structured sink every warning and diagnostic is routed
// through. It is a narrow subset of *logrus.Logger so callers can plug
// in their own entry (e.g. with request-scoped fields); its method uses
// logrus.Fields and *logrus.Entry, so an implementation imports logrus.
type Logger interface {
	WithFields(fields logrus.Fields) *logrus.Entry
}

// defaultLogger is used whenever a Config leaves Logger nil.
var defaultLogger = logrus.New()

func warnPosition(log Logger, kind Kind, spaceID string, line int, objID rpsval.ObjectId, msg string) {
	if log == nil {
		log = defaultLogger
	}
	fields := logrus.Fields{"kind": string(kind)}
	if spaceID != "" {
		fields["space"] = spaceID
	}
	if line > 0 {
		fields["line"] = line
	}
	if objID.Valid() {
		fields["object"] = objID.String()
	}
	log.WithFields(fields).Warn(msg)
}
