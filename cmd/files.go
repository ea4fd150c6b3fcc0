package cmd

import (
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/fixlog/fixlog/internal/pkg/utils"
)

// The files subcommands are the on-device replacement for pulling the
// storage card: list, print and delete track files over the same storage
// the tracker writes to.
func filesCmd() *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Browse recorded track files",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				cmd.Help()
			}
		},
	}

	filesCmd.AddCommand(filesLsCmd)
	filesCmd.AddCommand(filesCatCmd)
	filesCmd.AddCommand(filesRmCmd)

	return filesCmd
}

var filesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List track files",
	RunE: func(_ *cobra.Command, _ []string) error {
		appFS := afero.NewOsFs()

		files, err := utils.ListTrackFiles(appFS, cfg.DataDir)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("no track files in", cfg.DataDir)
			return nil
		}

		sort.Slice(files, func(i, j int) bool { return files[i].Index < files[j].Index })

		table := uitable.New()
		table.AddRow("INDEX", "NAME", "SIZE", "MODIFIED")
		for _, f := range files {
			table.AddRow(f.Index, f.Name, humanize.Bytes(uint64(f.Size)), f.ModTime.Format("2006-01-02 15:04:05"))
		}
		fmt.Println(table)

		return nil
	},
}

var filesCatCmd = &cobra.Command{
	Use:   "cat [INDEX|NAME]",
	Short: "Print a track file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		appFS := afero.NewOsFs()

		name, err := resolveTrackFile(appFS, args[0])
		if err != nil {
			return err
		}

		f, err := appFS.Open(path.Join(cfg.DataDir, name))
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(os.Stdout, f)
		return err
	},
}

var filesRmCmd = &cobra.Command{
	Use:   "rm [INDEX|NAME]",
	Short: "Delete a track file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		appFS := afero.NewOsFs()

		name, err := resolveTrackFile(appFS, args[0])
		if err != nil {
			return err
		}

		if err := appFS.Remove(path.Join(cfg.DataDir, name)); err != nil {
			return err
		}

		fmt.Println("deleted", name)
		return nil
	},
}

// resolveTrackFile accepts either a session index or a literal file name.
func resolveTrackFile(fs afero.Fs, arg string) (string, error) {
	if index, err := strconv.ParseUint(arg, 10, 64); err == nil {
		files, err := utils.ListTrackFiles(fs, cfg.DataDir)
		if err != nil {
			return "", err
		}
		for _, f := range files {
			if f.Index == index {
				return f.Name, nil
			}
		}
		return "", fmt.Errorf("no track file with index %d", index)
	}

	exists, err := afero.Exists(fs, path.Join(cfg.DataDir, arg))
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("no track file named %q in %s", arg, cfg.DataDir)
	}

	return arg, nil
}
