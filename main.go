// Fixlog is a GNSS track logger for small always-on devices: it samples
// position fixes, buffers them in memory, and appends them to sequentially
// numbered track files on storage.
package main

import (
	"fmt"
	"os"

	"github.com/fixlog/fixlog/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
