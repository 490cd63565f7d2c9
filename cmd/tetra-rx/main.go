package main

import (
	tetra "github.com/doismellburning/tetrarx/src"
)

func main() {
	tetra.TetraRxMain()
}
