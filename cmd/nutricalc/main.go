// Command nutricalc runs the calorie calculator offline, without a database.
//
//	nutricalc target --weight 80 --height 180 --age 30 --sex male --activity moderately_active --goal lose
//	nutricalc entry banana --grams 120
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
