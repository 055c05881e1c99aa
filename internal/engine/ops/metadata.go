package ops

import "strings"

// Describe reports the capability shape and possible VirtualException kinds
// the handler for a given instruction's Mnemonic() declares, independent of
// any particular instruction's operands — used by tests asserting the
// dispatch table's shape stays complete
// as opcodes are added: each handler declares the set of virtual
// exceptions it may raise. Matching is by longest registered
// prefix, since BinaryArith's Mnemonic() varies with operand type and
// literal form (e.g. "div-int/lit") and IfTest's with comparison (e.g.
// "if-lt").
func Describe(mnemonic string) (Capability, []string, bool) {
	best := ""
	for prefix := range descriptions {
		if strings.HasPrefix(mnemonic, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return 0, nil, false
	}
	d := descriptions[best]
	return d.capability, d.exceptions, true
}

type opDescription struct {
	capability Capability
	exceptions []string
}

var (
	arithmeticException     = "Ljava/lang/ArithmeticException;"
	nullPointerException    = "Ljava/lang/NullPointerException;"
	classCastException      = "Ljava/lang/ClassCastException;"
)

var descriptions = map[string]opDescription{
	"const":            {MethodStateOp, nil},
	"move":             {MethodStateOp, nil},
	"move-result":      {MethodStateOp, nil},
	"move-exception":   {MethodStateOp, nil},
	"goto":             {MethodStateOp, nil},
	"if":               {MethodStateOp, nil},
	"return":           {MethodStateOp, nil},
	"throw":            {MethodStateOp, nil},
	"add":              {MethodStateOp, nil},
	"sub":              {MethodStateOp, nil},
	"mul":              {MethodStateOp, nil},
	"div":              {MethodStateOp, []string{arithmeticException}},
	"rem":              {MethodStateOp, []string{arithmeticException}},
	"new-instance":     {ExecutionContextOp, nil},
	"new-array":        {MethodStateOp, nil},
	"instance-of":      {MethodStateOp, nil},
	"check-cast":       {MethodStateOp, []string{classCastException}},
	"iget/iput":        {ExecutionContextOp, []string{nullPointerException}},
	"sget/sput":        {ExecutionContextOp, nil},
	"invoke-virtual":   {InvokeOp, []string{nullPointerException}},
	"invoke-direct":    {InvokeOp, []string{nullPointerException}},
	"invoke-static":    {InvokeOp, nil},
	"invoke-interface": {InvokeOp, []string{nullPointerException}},
	"invoke-super":     {InvokeOp, []string{nullPointerException}},
	"nop":              {MethodStateOp, nil},
}
