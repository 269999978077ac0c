package cmd

import (
	"github.com/ardnew/lambda/lang"
)

// Output holds the flags that select how results are written.
type Output struct {
	Output string `default:"text" enum:"text,json,yaml" help:"Output format." short:"o"`
	Indent int    `default:"0"                          help:"Indentation width for json and yaml (0 is compact)."`
}

func (o Output) format() lang.Format {
	f, err := lang.ParseFormat(o.Output)
	if err != nil {
		return lang.FormatText
	}

	return f
}
