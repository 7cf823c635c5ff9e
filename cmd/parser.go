package cmd

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses user-defined arguments into flags
type Parser struct {
	flagSet *CommandFlagSet
	// stop at the first positional argument and keep the rest unparsed
	interspersed bool
}

func NewParser(flagSet *CommandFlagSet) *Parser {
	if flagSet == nil {
		flagSet = &CommandFlagSet{Flags: make(map[string]*CommandFlag)}
	}
	return &Parser{
		flagSet:      flagSet,
		interspersed: true,
	}
}

// NewGlobalParser parses leading flags only. Everything from the first
// positional argument on is returned in Args untouched, so a command name
// and its own flags can follow.
func NewGlobalParser(flagSet *CommandFlagSet) *Parser {
	p := NewParser(flagSet)
	p.interspersed = false
	return p
}

func (cp *Parser) Parse(raw []string) (*CommandArgs, error) {
	args := &CommandArgs{
		Flags: make(map[string]any),
		Raw:   raw,
	}

	for flagName, flag := range cp.flagSet.Flags {
		if flag.Default != nil {
			args.Flags[flagName] = flag.Default
		}
	}

	longToName := make(map[string]string)
	shortToName := make(map[string]string)
	for flagName, flag := range cp.flagSet.Flags {
		longToName[flag.Name] = flagName
		if flag.Short != "" {
			shortToName[flag.Short] = flagName
		}
	}

	seen := make(map[string]bool)
	for i := 0; i < len(raw); i++ {
		arg := raw[i]

		if arg == "--" {
			args.Args = append(args.Args, raw[i+1:]...)
			break
		}

		if strings.HasPrefix(arg, "--") {
			key, value, hasValue := parseLongFlag(arg)
			flagName, exists := longToName[key]
			if !exists {
				return nil, fmt.Errorf("unknown flag: --%s", key)
			}

			flag := cp.flagSet.Flags[flagName]
			switch {
			case flag.Type == "bool":
				args.Flags[flagName] = !hasValue || truthy(value)
			case hasValue:
			case i+1 < len(raw) && isValue(raw[i+1]):
				value = raw[i+1]
				i++
			default:
				return nil, fmt.Errorf("flag --%s requires a value", key)
			}
			if flag.Type != "bool" {
				if err := setFlag(args, flagName, flag, value, seen); err != nil {
					return nil, err
				}
			}
			continue
		}

		if strings.HasPrefix(arg, "-") && len(arg) > 1 && !isNumber(arg) {
			shortFlags := arg[1:]

			for j, shortChar := range shortFlags {
				shortStr := string(shortChar)
				flagName, exists := shortToName[shortStr]
				if !exists {
					return nil, fmt.Errorf("unknown flag: -%s", shortStr)
				}

				flag := cp.flagSet.Flags[flagName]
				if flag.Type == "bool" {
					args.Flags[flagName] = true
					continue
				}

				var value string
				if j+1 < len(shortFlags) {
					value = shortFlags[j+1:]
				} else if i+1 < len(raw) && isValue(raw[i+1]) {
					value = raw[i+1]
					i++
				} else {
					return nil, fmt.Errorf("flag -%s requires a value", shortStr)
				}
				if err := setFlag(args, flagName, flag, value, seen); err != nil {
					return nil, err
				}
				break
			}
			continue
		}

		if !cp.interspersed {
			args.Args = append(args.Args, raw[i:]...)
			break
		}
		args.Args = append(args.Args, arg)
	}

	for flagName, flag := range cp.flagSet.Flags {
		if flag.Required {
			if _, ok := args.Flags[flagName]; !ok {
				if flag.Short != "" {
					return nil, fmt.Errorf("required flag: -%s / --%s", flag.Short, flag.Name)
				}
				return nil, fmt.Errorf("required flag: --%s", flag.Name)
			}
		}
	}

	return args, nil
}

func setFlag(args *CommandArgs, flagName string, flag *CommandFlag, value string, seen map[string]bool) error {
	if flag.Multiple {
		// the first occurrence replaces any default
		var values []string
		if seen[flagName] {
			values, _ = args.Flags[flagName].([]string)
		}
		seen[flagName] = true
		args.Flags[flagName] = append(values, value)
		return nil
	}

	v, err := coerce(value, flag.Type)
	if err != nil {
		return fmt.Errorf("flag --%s: %w", flag.Name, err)
	}
	args.Flags[flagName] = v
	return nil
}

func parseLongFlag(arg string) (key, value string, hasValue bool) {
	arg = strings.TrimPrefix(arg, "--")
	if idx := strings.Index(arg, "="); idx >= 0 {
		return arg[:idx], arg[idx+1:], true
	}
	return arg, "", false
}

func isValue(arg string) bool {
	return !strings.HasPrefix(arg, "-") || isNumber(arg)
}

func isNumber(arg string) bool {
	_, err := strconv.ParseFloat(arg, 64)
	return err == nil
}

func truthy(value string) bool {
	return value == "true" || value == "1" || value == "yes"
}

func coerce(value string, typeStr string) (any, error) {
	switch typeStr {
	case "int":
		return strconv.ParseInt(value, 10, 64)
	case "float":
		return strconv.ParseFloat(value, 64)
	case "bool":
		return truthy(value), nil
	default:
		return value, nil
	}
}
