// Command arbor inspects and runs arbor view layouts.
//
//	arbor tree -f layout.yaml   print the view tree
//	arbor run -f layout.yaml    open the layout in a window
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
