// SPDX-License-Identifier: EPL-2.0

package logging

import "log/slog"

// Field names shared by every package that logs conversions.
const (
	FieldComponent   = "component"
	FieldSessionID   = "session_id"
	FieldFileType    = "file_type"
	FieldStrategy    = "strategy"
	FieldSource      = "source"
	FieldDestination = "destination"
	FieldFrames      = "frames"
	FieldProgress    = "progress"
)

// Error returns the attribute used for errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}
