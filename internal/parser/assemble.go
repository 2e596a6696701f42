package parser

import "sush/internal/shellerr"

// assembleSegment turns one segment's tokens into a CommandDescriptor,
// given its position in the pipeline. index and total let the assembler
// set the pipe flags and apply the first/last-segment redirection rules.
func assembleSegment(tokens []Token, index, total int) (CommandDescriptor, error) {

	// Step 1: re-tag redirections. A Redir token with nothing after it
	// is malformed; otherwise the following Normal token is re-tagged
	// and the Redir token is dropped.
	retagged := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind != Redir {
			retagged = append(retagged, tok)
			continue
		}
		if i+1 >= len(tokens) {
			return CommandDescriptor{}, shellerr.ErrMalformedCmdline
		}
		var kind TokenKind
		switch tok.Text {
		case "<":
			kind = FileIn
		case ">":
			kind = FileOutTrunc
		case ">>":
			kind = FileOutAppend
		}
		retagged = append(retagged, Token{Text: tokens[i+1].Text, Kind: kind})
		i++ // consume the filename token too
	}

	// Step 2: extract redirections into the descriptor; each channel
	// may be set at most once.
	desc := CommandDescriptor{}
	haveStdin := false
	haveStdout := false
	argv := make([]string, 0, len(retagged))

	for _, tok := range retagged {
		switch tok.Kind {
		case FileIn:
			if haveStdin {
				return CommandDescriptor{}, shellerr.ErrMalformedCmdline
			}
			haveStdin = true
			desc.StdinKind = StdinFile
			desc.StdinPath = tok.Text
		case FileOutTrunc:
			if haveStdout {
				return CommandDescriptor{}, shellerr.ErrMalformedCmdline
			}
			haveStdout = true
			desc.StdoutKind = StdoutTrunc
			desc.StdoutPath = tok.Text
		case FileOutAppend:
			if haveStdout {
				return CommandDescriptor{}, shellerr.ErrMalformedCmdline
			}
			haveStdout = true
			desc.StdoutKind = StdoutAppend
			desc.StdoutPath = tok.Text
		default:
			argv = append(argv, tok.Text)
		}
	}

	// Step 3: pipe flags from segment position.
	desc.PipeIn = index > 0
	desc.PipeOut = index < total-1

	// Step 4: channel exclusivity.
	if desc.PipeIn && desc.StdinKind != StdinDefault {
		return CommandDescriptor{}, shellerr.ErrMalformedCmdline
	}
	if desc.PipeOut && desc.StdoutKind != StdoutDefault {
		return CommandDescriptor{}, shellerr.ErrMalformedCmdline
	}
	if desc.StdinKind == StdinFile && desc.StdinPath == "" {
		return CommandDescriptor{}, shellerr.ErrMalformedCmdline
	}
	if desc.StdoutKind != StdoutDefault && desc.StdoutPath == "" {
		return CommandDescriptor{}, shellerr.ErrMalformedCmdline
	}

	// Step 5: materialize argv.
	if len(argv) == 0 {
		return CommandDescriptor{}, shellerr.ErrMalformedCmdline
	}
	desc.Argv = argv
	desc.CmdName = argv[0]

	return desc, nil
}

// Assemble turns a slice of raw `|`-separated segment strings into a
// validated Pipeline.
func Assemble(segments []string) (Pipeline, error) {
	total := len(segments)
	pipeline := make(Pipeline, 0, total)

	for i, segment := range segments {
		tokens := Tokenize(segment)
		desc, err := assembleSegment(tokens, i, total)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, desc)
	}

	return pipeline, nil
}
