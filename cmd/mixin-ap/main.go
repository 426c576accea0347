// Command mixin-ap resolves mixin targets and writes the obfuscation
// mappings and reference maps for them.
//
// Usage:
//
//	mixin-ap process --src src/main/java -A reobfSrgFile=mcp-srg.srg -A outRefMapFile=refmap.json
//	mixin-ap process --manifest mixins.yaml --watch
//	mixin-ap targets net.minecraft.world.World --file targets.txt
//	mixin-ap launch build/libs/*.MF
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}

		os.Exit(1)
	}
}
