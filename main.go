package main

import (
	"os"

	"grimm.is/rtlink/cmd"
	"grimm.is/rtlink/internal/brand"
	"grimm.is/rtlink/internal/i18n"
)

var printer = i18n.NewCLIPrinter()

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	args := os.Args[2:]
	var err error

	switch os.Args[1] {
	case "list", "ls":
		err = cmd.RunList(args)
	case "show":
		err = cmd.RunShow(args)
	case "create", "add":
		err = cmd.RunCreate(args)
	case "set":
		err = cmd.RunSet(args)
	case "delete", "del":
		err = cmd.RunDelete(args)
	case "monitor":
		err = cmd.RunMonitor(args)
	case "version":
		cmd.RunVersion(os.Stdout)
	case "help", "-h", "--help":
		printUsage()
	default:
		printer.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		printer.Fprintf(os.Stderr, "%s %s: %v\n", brand.BinaryName, os.Args[1], err)
		os.Exit(1)
	}
}

func printUsage() {
	printer.Printf(`%s - %s

Usage:
  %[1]s list    [-o table|json|yaml] [--kind K] [--master IDX] [--up]
  %[1]s show    <name|index> [-o text|json|yaml] [--no-hw]
  %[1]s create  --kind K [--name N] [--mtu M] [--address MAC] [--master IDX] [--link IDX] [--up]
  %[1]s set     <name|index> [--mtu M] [--name N] [--address MAC] [--master IDX]
                [--up|--down] [--promisc on|off] [--netns NAME]
  %[1]s delete  <name|index>
  %[1]s monitor [name|index] [--metrics ADDR] [-o text|json]
  %[1]s version

Every command accepts -c/--config FILE (default %[3]s) and --debug.
`, brand.BinaryName, brand.Description, brand.DefaultConfigPath())
}
