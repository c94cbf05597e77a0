//go:build tinygo

package main

import (
	"pirdisplay/app"
	"pirdisplay/hal"
)

func main() {
	app.RunForever(hal.New())
}
