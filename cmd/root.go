package main

import (
	"github.com/spf13/cobra"
)

var (
	dryRun      bool
	recursive   bool
	lower       bool
	capitalize  bool
	filesOnly   bool
	excludeDirs []string
	substitute  string
	namePrefix  string
	verify      bool
	cfgFile     string
	verbose     bool
)

func buildRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "namefmt [flags] targets...",
		Short: "Normalize file and directory names in batch",
		Long: `namefmt renames files and directories in place with consistent names.

Every name has its spaces replaced by underscores. On top of that a name can be
lower-cased, capitalized word by word, have a substring substituted, or be
replaced entirely by a numbered sequence.

Examples:
  # Preview what would change (recommended first step)
  namefmt --dry-run -r -l ./photos

  # Lower-case everything below ./photos
  namefmt -r -l ./photos

  # Replace TEST with SAMPLE in every name of the tree
  namefmt -r -s TEST/SAMPLE ./tree

  # Number files by capture time: trip_1.jpg, trip_2.jpg, ...
  namefmt -f -n trip ./photos/*.jpg

Safety:
  Files are first moved to a temporary staging name and only then to their
  final name, so a batch never overwrites one of its own files. An existing
  file is never replaced. Image companions (photo.jpg.pp3) follow their image.`,
		Args:          cobra.MinimumNArgs(1),
		RunE:          runRename,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.BoolVarP(&dryRun, "dry-run", "d", false, "show what would be renamed without making changes")
	flags.BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
	flags.BoolVarP(&lower, "lower", "l", false, "convert names to lower case")
	flags.BoolVarP(&capitalize, "capitalize", "c", false, "capitalize every word")
	flags.BoolVarP(&filesOnly, "files", "f", false, "rename files only, leave directory names alone")
	flags.StringArrayVarP(&excludeDirs, "exclude_dirs", "e", nil, "directory name to leave untouched (repeatable)")
	flags.StringVarP(&substitute, "substitute", "s", "", "replace substring, given as old/new")
	flags.StringVarP(&namePrefix, "name", "n", "", "rename files to <name>_1, <name>_2, ... in capture-time order")
	flags.BoolVar(&verify, "verify", false, "check that no file content changed after renaming")
	flags.StringVar(&cfgFile, "config", "", "defaults file (default is $XDG_CONFIG_HOME/namefmt/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging and a summary table")

	return cmd
}
