package main

import (
	"chessponder/magic"
	"chessponder/uci"
)

func main() {
	if err := magic.Prepare(); err != nil {
		panic(err)
	}
	uci.Start()
}
