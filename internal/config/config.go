// Package config implements the CLI surface and configuration collaborator:
// parsing the hand-written flag set into an Options struct and the Policy
// predicates opcode handlers and the launcher consult.
package config

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"dexsimplify/internal/engine"
	"dexsimplify/internal/engine/state"
	"dexsimplify/internal/enginerr"
)

// Options is the parsed form of the command-line surface.
type Options struct {
	Input  string
	Out    string

	IncludeFilter string
	ExcludeFilter string

	IncludeSupportLibrary bool
	OutputAPILevel        int

	Bounds state.ResourceBounds

	MaxOptimizationPasses int

	Quiet   bool
	Verbose int // 0 (default), 1, 2, or 3
	Help    bool
}

// DefaultOptions mirrors state.DefaultBounds and the other conservative
// defaults in effect before flags are applied.
func DefaultOptions() Options {
	return Options{
		Bounds:                state.DefaultBounds(),
		MaxOptimizationPasses: 10,
	}
}

// Parse hand-parses args (os.Args[1:]) into Options: a manual loop over the
// argument slice rather than a flags.FlagSet, so that `--verbose` (no
// value) and `--verbose=2` are both accepted as valid forms of
// `--verbose[=1|2|3]`.
func Parse(args []string) (Options, error) {
	opts := DefaultOptions()
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := splitFlag(arg)

		switch {
		case !strings.HasPrefix(arg, "-"):
			positional = append(positional, arg)
			continue
		case name == "--help" || name == "-h":
			opts.Help = true
		case name == "--quiet":
			opts.Quiet = true
		case name == "--verbose":
			if !hasValue {
				opts.Verbose = 1
				continue
			}
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 || n > 3 {
				return opts, enginerr.NewConfigError("--verbose takes 1, 2, or 3: " + value)
			}
			opts.Verbose = n
		case name == "--include-support-library":
			opts.IncludeSupportLibrary = true
		case name == "--out":
			v, err := requireValue(args, &i, name, value, hasValue)
			if err != nil {
				return opts, err
			}
			opts.Out = v
		case name == "--include-filter":
			v, err := requireValue(args, &i, name, value, hasValue)
			if err != nil {
				return opts, err
			}
			if _, rerr := regexp.Compile(v); rerr != nil {
				return opts, enginerr.NewConfigError("--include-filter is not a valid regexp: " + rerr.Error())
			}
			opts.IncludeFilter = v
		case name == "--exclude-filter":
			v, err := requireValue(args, &i, name, value, hasValue)
			if err != nil {
				return opts, err
			}
			if _, rerr := regexp.Compile(v); rerr != nil {
				return opts, enginerr.NewConfigError("--exclude-filter is not a valid regexp: " + rerr.Error())
			}
			opts.ExcludeFilter = v
		case name == "--output-api-level":
			n, err := requireInt(args, &i, name, value, hasValue)
			if err != nil {
				return opts, err
			}
			opts.OutputAPILevel = n
		case name == "--max-address-visits":
			n, err := requireInt(args, &i, name, value, hasValue)
			if err != nil {
				return opts, err
			}
			opts.Bounds.MaxAddressVisits = n
		case name == "--max-call-depth":
			n, err := requireInt(args, &i, name, value, hasValue)
			if err != nil {
				return opts, err
			}
			opts.Bounds.MaxCallDepth = n
		case name == "--max-method-visits":
			n, err := requireInt(args, &i, name, value, hasValue)
			if err != nil {
				return opts, err
			}
			opts.Bounds.MaxMethodVisits = n
		case name == "--max-execution-time":
			n, err := requireInt(args, &i, name, value, hasValue)
			if err != nil {
				return opts, err
			}
			opts.Bounds.MaxExecutionTime = time.Duration(n) * time.Second
		case name == "--max-optimization-passes":
			n, err := requireInt(args, &i, name, value, hasValue)
			if err != nil {
				return opts, err
			}
			opts.MaxOptimizationPasses = n
		default:
			return opts, enginerr.NewConfigError("unrecognized option: " + arg)
		}
	}

	if opts.Help {
		return opts, nil
	}
	if len(positional) != 1 {
		return opts, enginerr.NewConfigError("expected exactly one positional argument <input>, got " + strconv.Itoa(len(positional)))
	}
	opts.Input = positional[0]
	if opts.Out == "" {
		opts.Out = opts.Input
	}
	return opts, nil
}

// splitFlag separates "--name=value" into ("--name", "value", true), or
// returns ("--name", "", false) when there's no '='.
func splitFlag(arg string) (name, value string, hasValue bool) {
	if idx := strings.IndexByte(arg, '='); idx >= 0 {
		return arg[:idx], arg[idx+1:], true
	}
	return arg, "", false
}

// requireValue resolves a flag's value either from "--name=value" or from
// the next positional slot ("--name value"), advancing i past it.
func requireValue(args []string, i *int, name, inlineValue string, hasValue bool) (string, error) {
	if hasValue {
		return inlineValue, nil
	}
	if *i+1 >= len(args) {
		return "", enginerr.NewConfigError(name + " requires a value")
	}
	*i++
	return args[*i], nil
}

func requireInt(args []string, i *int, name, inlineValue string, hasValue bool) (int, error) {
	v, err := requireValue(args, i, name, inlineValue, hasValue)
	if err != nil {
		return 0, err
	}
	n, perr := strconv.Atoi(v)
	if perr != nil {
		return 0, enginerr.NewConfigError(name + " expects an integer: " + v)
	}
	return n, nil
}

// supportLibraryPattern matches the default skip pattern:
// Landroid/support/(annotation|vNN)/...
var supportLibraryPattern = regexp.MustCompile(`^Landroid/support/(annotation|v\d+)/`)

// frameworkPrefixes are package prefixes treated as framework/runtime
// classes rather than application code under analysis, scoped to the
// packages state.Policy's consumers actually need to distinguish: the JDK
// classes internal/engine/safelib.go models, and the Android/support
// namespaces called out above.
var frameworkPrefixes = []string{
	"Ljava/",
	"Ljavax/",
	"Landroid/",
	"Ldalvik/",
}

// Policy implements state.Policy from parsed Options plus the set of
// class names the launcher's ClassManager enumerates as local to the
// input DEX (everything else is framework).
type Policy struct {
	Opts         Options
	localClasses map[string]bool
}

// NewPolicy builds the configuration collaborator. localClasses is the
// set of class names the ClassManager
// enumerates as belonging to the input DEX — everything else is framework.
func NewPolicy(opts Options, localClasses map[string]bool) *Policy {
	return &Policy{Opts: opts, localClasses: localClasses}
}

var _ state.Policy = (*Policy)(nil)

// IsSafeClass reports whether className's static initializer and methods
// are safe to actually invoke symbolically — limited to the handful of
// java.lang classes internal/engine/safelib.go models exactly.
func (p *Policy) IsSafeClass(className string) bool {
	switch className {
	case "Ljava/lang/Math;", "Ljava/lang/Integer;":
		return true
	default:
		return false
	}
}

// IsSafeMethod reports whether signature is one of the registry entries
// backing engine.ReflectSafe — delegated to engine.IsKnownSafeMethod so
// this package never needs its own copy of that signature list.
func (p *Policy) IsSafeMethod(signature string) bool {
	return engine.IsKnownSafeMethod(signature)
}

// IsFrameworkClass reports whether className belongs to the JDK/Android
// runtime rather than the application under analysis.
func (p *Policy) IsFrameworkClass(className string) bool {
	// android.support classes are checked ahead of the blanket Landroid/
	// prefix below: they match that prefix too, so --include-support-library
	// would never have any effect if the generic loop ran first.
	if supportLibraryPattern.MatchString(className) {
		return !p.Opts.IncludeSupportLibrary
	}
	for _, prefix := range frameworkPrefixes {
		if strings.HasPrefix(className, prefix) {
			return true
		}
	}
	return false
}

// IsLocalClass reports whether className is defined by the input DEX
// (as opposed to a framework class referenced but not shipped).
func (p *Policy) IsLocalClass(className string) bool {
	return p.localClasses[className]
}
