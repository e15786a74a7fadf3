package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/hazyhaar/wordsort/pkg/mcpquic"
	"github.com/hazyhaar/wordsort/pkg/wordio"
	"github.com/hazyhaar/wordsort/pkg/wordsort"
)

// remoteArgs maps the flags given on the command line to sort_words arguments.
func remoteArgs(fs *flag.FlagSet, opt *optionFlags, text string) map[string]any {
	args := map[string]any{"text": text, "preset": *opt.preset}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "desc":
			args["descending"] = *opt.desc
		case "case-sensitive":
			args["case_sensitive"] = *opt.caseSensitive
		case "keep-accents":
			args["keep_accents"] = *opt.keepAccents
		case "dedup":
			args["remove_duplicates"] = *opt.dedup
		case "locale":
			args["locale"] = *opt.locale
		}
	})
	return args
}

func runRemote(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("remote", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", "localhost:8421", "server address (UDP)")
	in := fs.String("in", "", "input file (default stdin)")
	insecure := fs.Bool("insecure", true, "skip TLS certificate verification")
	timeout := fs.Duration("timeout", 30*time.Second, "call timeout")
	listTools := fs.Bool("tools", false, "list the server's tools and exit")
	opt := addOptionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	c := mcpquic.NewClient(*addr, mcpquic.ClientTLSConfig(*insecure), version)
	if err := c.Connect(ctx); err != nil {
		fmt.Fprintf(stderr, "remote: %v\n", err)
		return exitFailure
	}
	defer c.Close()

	if *listTools {
		tools, err := c.ListTools(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "remote: %v\n", err)
			return exitFailure
		}
		for _, t := range tools.Tools {
			fmt.Fprintf(stdout, "%s\t%s\n", t.Name, t.Description)
		}
		return exitOK
	}

	var (
		text string
		err  error
	)
	if *in != "" {
		text, err = wordio.ReadFile(*in, "")
	} else {
		text, err = wordio.ReadText(stdin, "")
	}
	if err != nil {
		fmt.Fprintf(stderr, "remote: %v\n", err)
		return exitFailure
	}

	out, err := c.CallText(ctx, "sort_words", remoteArgs(fs, opt, text))
	if err != nil {
		fmt.Fprintf(stderr, "remote: %v\n", err)
		return exitFailure
	}
	var res wordsort.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		fmt.Fprintf(stderr, "remote: decode response: %v\n", err)
		return exitFailure
	}
	return report(&res, stdout, stderr)
}

// report prints a result's words and returns the exit code for its status.
func report(res *wordsort.Result, stdout, stderr io.Writer) int {
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
	if err := res.Err(); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		if res.Status == wordsort.StatusEmpty {
			return exitEmpty
		}
		return exitFailure
	}
	if err := wordio.WriteResult(stdout, res); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitFailure
	}
	fmt.Fprintf(stderr, "%d word(s) sorted\n", res.Count)
	return exitOK
}
