package lvn

// Options selects which of LVN's optional behaviors are active. Unknown
// CLI flags never reach here; ParseOptions silently ignores them, mirroring
// original_source/lvn/src/cli_options.rs's parse_options, which only ever
// looked for its own recognized flag and ignored the rest.
type Options struct {
	// CopyPropagate enables step 5(a): y = id x collapses y onto x's
	// number instead of allocating a fresh one.
	CopyPropagate bool
	// Commutative enables step 2: binary Add/Mul/Eq argument numbers are
	// sorted ascending before lookup.
	Commutative bool
	// Fold enables step 3: And/Or/Not over constant Bool operands are
	// evaluated and replace the instruction with a Constant.
	Fold bool
}

// ParseOptions scans args (as given on the command line, any order,
// repeats allowed) for -p, -c and -f. -f implies -p and -c -- an addition
// over the original tool, which never implemented folding and so never
// needed the implication.
func ParseOptions(args []string) Options {
	var opts Options
	for _, arg := range args {
		switch arg {
		case "-p":
			opts.CopyPropagate = true
		case "-c":
			opts.Commutative = true
		case "-f":
			opts.Fold = true
		}
	}
	if opts.Fold {
		opts.CopyPropagate = true
		opts.Commutative = true
	}
	return opts
}
