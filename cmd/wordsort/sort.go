package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/hazyhaar/wordsort/pkg/wordio"
	"github.com/hazyhaar/wordsort/pkg/wordsort"
)

// optionFlags are the sort flags shared by sort and remote.
type optionFlags struct {
	desc          *bool
	caseSensitive *bool
	keepAccents   *bool
	dedup         *bool
	locale        *string
	preset        *string
}

func addOptionFlags(fs *flag.FlagSet) *optionFlags {
	return &optionFlags{
		desc:          fs.Bool("desc", false, "sort Z to A"),
		caseSensitive: fs.Bool("case-sensitive", false, "distinguish upper and lower case"),
		keepAccents:   fs.Bool("keep-accents", false, "distinguish accented letters"),
		dedup:         fs.Bool("dedup", false, "remove duplicate words"),
		locale:        fs.String("locale", "", "collation locale (BCP 47 tag)"),
		preset:        fs.String("preset", "default", "preset to start from"),
	}
}

// apply overrides base with the flags given on the command line only.
func (f *optionFlags) apply(fs *flag.FlagSet, base wordsort.Options) wordsort.Options {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "desc":
			base.Ascending = !*f.desc
		case "case-sensitive":
			base.IgnoreCase = !*f.caseSensitive
		case "keep-accents":
			base.IgnoreAccents = !*f.keepAccents
		case "dedup":
			base.RemoveDuplicates = *f.dedup
		case "locale":
			base.Locale = *f.locale
		}
	})
	return base
}

func runSort(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sort", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	in := fs.String("in", "", "input file (default stdin)")
	url := fs.String("url", "", "download the input from this URL")
	encoding := fs.String("encoding", "", "input encoding (default utf-8)")
	out := fs.String("out", "", "output file (default stdout)")
	opt := addOptionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}
	if *in != "" && *url != "" {
		fmt.Fprintln(stderr, "sort: -in and -url are mutually exclusive")
		return exitFailure
	}

	cfg, logger, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "sort: %v\n", err)
		return exitFailure
	}
	svc, err := newService(cfg, logger, false)
	if err != nil {
		fmt.Fprintf(stderr, "sort: %v\n", err)
		return exitFailure
	}
	p, err := svc.Presets.Get(*opt.preset)
	if err != nil {
		fmt.Fprintf(stderr, "sort: %v\n", err)
		return exitFailure
	}
	opts := opt.apply(fs, p.Options)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var text string
	switch {
	case *url != "":
		fetchCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		text, err = wordio.Fetch(fetchCtx, *url, *encoding)
		cancel()
	case *in != "":
		text, err = wordio.ReadFile(*in, *encoding)
	default:
		text, err = wordio.ReadText(stdin, *encoding)
	}
	if err != nil {
		fmt.Fprintf(stderr, "sort: %v\n", err)
		return exitFailure
	}

	res := svc.Sorter.Sort(text, opts)
	if *out == "" {
		return report(res, stdout, stderr)
	}
	if res.Status != wordsort.StatusSuccess {
		return report(res, io.Discard, stderr)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
	if err := wordio.SaveFile(*out, res); err != nil {
		fmt.Fprintf(stderr, "sort: %v\n", err)
		return exitFailure
	}
	fmt.Fprintf(stderr, "%d word(s) sorted\n", res.Count)
	return exitOK
}
