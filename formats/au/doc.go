// SPDX-License-Identifier: EPL-2.0

// Package au reads and writes Sun/NeXT .au files holding signed big-endian
// linear PCM (encodings 2 to 5). Mu-law, A-law and float encodings are
// rejected.
package au
