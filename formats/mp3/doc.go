// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files with github.com/hajimehoshi/go-mp3.
//
// go-mp3 always outputs interleaved stereo, so the returned source reports
// two channels even for mono files. Use audio.MatchChannels to fold it to
// the layout of the target container.
package mp3
