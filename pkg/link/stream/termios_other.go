// +build !linux

package stream

import "os"

// makeRaw is only supported on linux, elsewhere the port must be
// configured beforehand, e.g. with stty.
func makeRaw(f *os.File, baud int) error {
	return nil
}
