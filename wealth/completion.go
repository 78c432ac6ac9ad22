package main

import (
	"flag"

	"github.com/etnz/wealth/cmd"
	"github.com/etnz/wealth/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// predictors of flag values, by flag name. Other flags take anything.
var predictors = map[string]complete.Predictor{
	"config":   predict.Files("*.yaml"),
	"ledger":   predict.Files("*.jsonl"),
	"png":      predict.Files("*"),
	"resample": predict.Set{"none", "W", "M", "B"},
	"every":    predict.Set{"none", "W", "M", "B"},
}

// flags returns the completion of the flags of fs.
func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	res := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			res[f.Name] = predict.Nothing
			return
		}
		if p, ok := predictors[f.Name]; ok {
			res[f.Name] = p
			return
		}
		res[f.Name] = predict.Something
	})
	return res
}

// completion describes the command line for shell completion.
func completion(global *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{"help": {}, "flags": {}, "commands": {}},
		Flags: flags(global),
	}
	for _, group := range cmd.Commands() {
		for _, c := range group {
			fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
			c.SetFlags(fs)
			root.Sub[c.Name()] = &complete.Command{Flags: flags(fs)}
		}
	}
	if topics, err := docs.GetAllTopics(); err == nil {
		root.Sub["topic"].Args = predict.Set(topics)
	}
	return root
}
