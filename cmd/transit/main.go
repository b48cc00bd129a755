package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
)

// Supported subcommands:
// - process:  Answer a request document in batch
// - validate: Load a dataset and report its size
// - serve:    Run the HTTP API

func main() {
	processCmd := flag.NewFlagSet("process", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)

	// process parameters
	processInput := processCmd.String("input", "-", "Request document path, - for stdin")
	processOutput := processCmd.String("output", "-", "Response path, - for stdout")
	processIndent := processCmd.String("indent", "", "Indent for pretty-printed output")
	processImplicit := processCmd.Bool("implicit-stops", false, "Create placeholder stops for names referenced before definition")
	processLogLevel := processCmd.String("log-level", "warn", "Log level (debug, info, warn, error)")

	// validate parameters
	validateData := validateCmd.String("data", "./data/transit", "CSV dataset directory or JSON request document")
	validateImplicit := validateCmd.Bool("implicit-stops", false, "Create placeholder stops for names referenced before definition")

	// serve parameters
	serveConfig := serveCmd.String("config", "", "Directory containing config.yaml")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	flags := transitFlags{
		Process: processFlags{
			cmd:           processCmd,
			input:         processInput,
			output:        processOutput,
			indent:        processIndent,
			implicitStops: processImplicit,
			logLevel:      processLogLevel,
		},
		Validate: validateFlags{
			cmd:           validateCmd,
			data:          validateData,
			implicitStops: validateImplicit,
		},
		Serve: serveFlags{
			cmd:    serveCmd,
			config: serveConfig,
		},
	}

	if err := runSubcommand(ctx, &flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type transitFlags struct {
	Process  processFlags
	Validate validateFlags
	Serve    serveFlags
}

type processFlags struct {
	cmd           *flag.FlagSet
	input         *string
	output        *string
	indent        *string
	implicitStops *bool
	logLevel      *string
}

type validateFlags struct {
	cmd           *flag.FlagSet
	data          *string
	implicitStops *bool
}

type serveFlags struct {
	cmd    *flag.FlagSet
	config *string
}

func runSubcommand(ctx context.Context, flags *transitFlags) error {
	switch os.Args[1] {
	case "process":
		return handleProcess(ctx, flags)
	case "validate":
		return handleValidate(ctx, flags)
	case "serve":
		return handleServe(flags)
	case "help", "-h", "--help":
		printUsage()

		return nil
	default:
		printUsage()

		return errors.New("unknown subcommand")
	}
}

func handleProcess(ctx context.Context, flags *transitFlags) error {
	if err := flags.Process.cmd.Parse(os.Args[2:]); err != nil {
		return errors.Wrap(err, "failed to parse process flags")
	}

	return runProcess(ctx, processOptions{
		input:         *flags.Process.input,
		output:        *flags.Process.output,
		indent:        *flags.Process.indent,
		implicitStops: *flags.Process.implicitStops,
		logLevel:      *flags.Process.logLevel,
	})
}

func handleValidate(ctx context.Context, flags *transitFlags) error {
	if err := flags.Validate.cmd.Parse(os.Args[2:]); err != nil {
		return errors.Wrap(err, "failed to parse validate flags")
	}

	return runValidate(ctx, os.Stdout, *flags.Validate.data, *flags.Validate.implicitStops)
}

func handleServe(flags *transitFlags) error {
	if err := flags.Serve.cmd.Parse(os.Args[2:]); err != nil {
		return errors.Wrap(err, "failed to parse serve flags")
	}

	return runServe(*flags.Serve.config)
}

func printUsage() {
	fmt.Println("Transit Catalogue CLI")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  transit <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  process   Answer a JSON request document and write the responses")
	fmt.Println("  validate  Load a dataset, build the router and report its size")
	fmt.Println("  serve     Run the HTTP API")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  transit process -input requests.json -output responses.json -indent '  '")
	fmt.Println("  transit validate -data ./data/transit")
	fmt.Println("  transit serve -config ./config")
}
