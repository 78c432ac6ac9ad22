package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/wealth/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `topic [-list] [<topic>...]

Show documentation for the given topics, the readme by default.
Use '*' to show all topics.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "List the topics and their title.")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(c.Name(), func() error {
		if c.list {
			topics, err := docs.List()
			if err != nil {
				return err
			}
			var b strings.Builder
			b.WriteString("# Topics\n\n")
			for _, t := range topics {
				fmt.Fprintf(&b, "* `%s`: %s\n", t.Name, t.Title)
			}
			printMarkdown(b.String())
			return nil
		}

		topics := f.Args()
		if len(topics) == 0 {
			topics = []string{"readme"}
		}
		doc, err := docs.GetTopics(topics...)
		if err != nil {
			return fmt.Errorf("could not read doc: %w", err)
		}
		printMarkdown(doc)
		return nil
	})
}
