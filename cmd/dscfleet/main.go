package main

import (
	"fmt"
	"os"
)

const version = "dscfleet v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "provision":
		os.Exit(cmdProvision(os.Args[2:]))
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "version":
		fmt.Println(version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: dscfleet <command>

Commands:
  provision  Import the DSC configuration and compile it for the fleet
  check      Validate configuration and access to the automation account
  version    Print the version`)
}
