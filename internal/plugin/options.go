package plugin

import (
	"fmt"
	"strconv"
)

// Options is the normalized form of the flags a hook receives. Short and long
// spellings are resolved once, here.
type Options struct {
	Function        string
	Handler         string
	Path            string
	Reporter        string
	ReporterOptions string
	Data            string
	All             bool
	Watch           bool
}

// ParseOptions normalizes raw flag values keyed by long name or shortcut.
// A long name and its shortcut given with different values is an error.
func ParseOptions(commands []Command, raw map[string]string) (Options, error) {
	decl := indexOptions(commands)
	long := make(map[string]string, len(raw))

	for key, value := range raw {
		o, ok := decl[key]
		if !ok {
			return Options{}, fmt.Errorf("unknown option %q", key)
		}
		if prev, seen := long[o.Name]; seen && prev != value {
			return Options{}, fmt.Errorf("option --%s given twice with different values", o.Name)
		}
		long[o.Name] = value
	}

	opts := Options{
		Function:        long["function"],
		Handler:         long["handler"],
		Path:            long["path"],
		Reporter:        long["reporter"],
		ReporterOptions: long["reporter-options"],
		Data:            long["data"],
	}
	var err error
	if opts.All, err = parseBool(long, "all"); err != nil {
		return Options{}, err
	}
	if opts.Watch, err = parseBool(long, "watch"); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func parseBool(long map[string]string, name string) (bool, error) {
	v, ok := long[name]
	if !ok {
		return false, nil
	}
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("option --%s: %w", name, err)
	}
	return b, nil
}

// indexOptions maps every long name and shortcut to its declaration.
func indexOptions(commands []Command) map[string]Option {
	out := make(map[string]Option)
	var walk func([]Command)
	walk = func(cs []Command) {
		for _, c := range cs {
			for _, o := range c.Options {
				out[o.Name] = o
				if o.Shortcut != "" {
					out[o.Shortcut] = o
				}
			}
			walk(c.Commands)
		}
	}
	walk(commands)
	return out
}
