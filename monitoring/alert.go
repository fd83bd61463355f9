// Copyright (C) 2025 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package monitoring

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

// InitErrorTracking enables sentry. Without a dsn Alert only logs.
func InitErrorTracking(dsn, release string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	})
}

// Flush waits for queued events before the process exits.
func Flush() {
	sentry.Flush(2 * time.Second)
}

// Alert reports a failure which needs a human, like a failed lifecycle run against a
// live server. The tags are attached to the sentry event.
func Alert(message string, err error, tags map[string]string) {
	var evID *sentry.EventID
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		evID = sentry.CurrentHub().CaptureException(errors.Wrap(err, message))
	})
	slog.Error("critical error encountered", "msg", message, "error", err, "id (<nil> if not sent to error tracking)", evID)
}
