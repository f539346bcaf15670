package main

import (
	"HwStress/internal/hwstress"
)

func main() {
	hwstress.ParseCmdArgs()
}
