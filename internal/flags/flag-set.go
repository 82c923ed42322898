package flags

// FlagSet represents one compiler command line to be handed to an editor host,
// grouped by token category. Categories are assembled in a fixed order, see AsCompilerArgs.
type FlagSet struct {
	langArgs    []string // -x c
	warningArgs []string // -Wall and friends
	stdArg      string   // -std={dialect}, empty when the dialect is left to the compiler default
	codegenArgs []string // -fPIC
	defineArgs  []string // -D{name}
	includeDirs []string // -I{dir}, in command-line order
}

func MakeFlagSet() FlagSet {
	return FlagSet{
		langArgs:    make([]string, 0, 2),
		warningArgs: make([]string, 0, 2),
		codegenArgs: make([]string, 0, 1),
		defineArgs:  make([]string, 0, 1),
		includeDirs: make([]string, 0, 2),
	}
}

func (fs *FlagSet) AddIncludeDir(dir string) {
	fs.includeDirs = append(fs.includeDirs, dir)
}

func (fs *FlagSet) Count() int {
	count := len(fs.langArgs) + len(fs.warningArgs) + len(fs.codegenArgs) + len(fs.defineArgs) + len(fs.includeDirs)

	if fs.stdArg != "" {
		return count + 1
	}

	return count
}

// AsCompilerArgs assembles the final token list:
// language selection, warnings, optional -std, codegen, defines, include dirs.
// Include dirs are rendered as single "-I{dir}" tokens, the form the host protocol expects.
func (fs *FlagSet) AsCompilerArgs() []string {
	args := make([]string, 0, fs.Count())

	args = append(args, fs.langArgs...)
	args = append(args, fs.warningArgs...)

	if fs.stdArg != "" {
		args = append(args, fs.stdArg)
	}

	args = append(args, fs.codegenArgs...)
	args = append(args, fs.defineArgs...)

	for _, dir := range fs.includeDirs {
		args = append(args, "-I"+dir)
	}

	return args
}
