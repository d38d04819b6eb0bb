// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC files with github.com/mewkiz/flac so they can
// be used as replacement or origination audio.
package flac
