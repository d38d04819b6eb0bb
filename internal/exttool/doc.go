// SPDX-License-Identifier: EPL-2.0

// Package exttool drives the external programs lyntool depends on. There is
// no Vorbis encoder in Go, so channels are staged as WAV files in a
// workspace and handed to oggenc (or oggenc2).
package exttool
