package rla

import (
	"embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort       = "Unpack, patch and repack android packages"
	MsgUnpackShort     = "Unpack an apk into an editable project"
	MsgPackShort       = "Build and sign the next output package of a project"
	MsgSignShort       = "Sign an apk in place with the debug keystore"
	MsgSmali2JavaShort = "Decompile one smali file to java beside it"
	MsgJava2SmaliShort = "Compile one java file to smali beside it"
	MsgSmaliShort      = "Run smali with the given arguments"
	MsgBaksmaliShort   = "Run baksmali with the given arguments"
	MsgApksignerShort  = "Run apksigner with the given arguments"
	MsgConfigShort     = "Print the effective tool settings"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Result titles
	MsgUnpackedFormat = "Unpacked %s"
	MsgPackedFormat   = "Packed %s"
	MsgSignedFormat   = "Signed %s"
	MsgWroteFormat    = "Wrote %s"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat  = "Output format: auto, term, text or json"
	MsgFlagStyles  = "YAML file overriding the terminal styles"
	MsgFlagNoJadx  = "Skip decompiling java sources with jadx"
	MsgFlagNoGit   = "Do not create a git repository"
	MsgFlagSmali   = "Only extract and disassemble dex files"
	MsgFlagForce   = "Replace an existing project directory"
	MsgFlagDir     = "Project directory (default: search upwards from the current directory)"
	MsgFlagTmpl    = "Print a commented settings file instead"

	// Error messages
	MsgErrNoCommand = "no command specified"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/unpack-long.txt
	msgUnpackLongRaw string
	MsgUnpackLong    = strings.TrimSpace(msgUnpackLongRaw)

	//go:embed msgs/unpack-example.txt
	msgUnpackExampleRaw string
	MsgUnpackExample    = strings.TrimRight(msgUnpackExampleRaw, "\n")

	//go:embed msgs/pack-long.txt
	msgPackLongRaw string
	MsgPackLong    = strings.TrimSpace(msgPackLongRaw)

	//go:embed msgs/pack-example.txt
	msgPackExampleRaw string
	MsgPackExample    = strings.TrimRight(msgPackExampleRaw, "\n")

	//go:embed msgs/convert-long.txt
	msgConvertLongRaw string
	MsgConvertLong    = strings.TrimSpace(msgConvertLongRaw)

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)

// HelpTopics holds the guides shown by `rla help <topic>`
//
//go:embed topics
var HelpTopics embed.FS
