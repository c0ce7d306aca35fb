package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ledkb-setup/internal/executor"
	"ledkb-setup/internal/logger"
)

// prepareSource leaves an up-to-date source tree in repoDir, either from git or
// from a source archive when one was given.
func (i *Installer) prepareSource(ctx context.Context) error {
	if i.sourceArchive != "" {
		return i.unpackSource(ctx)
	}
	return i.checkout(ctx)
}

func isGitCheckout(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// checkout clones the repository, or, if a checkout exists, fetches and hard
// resets it to the remote default branch. Local modifications are discarded so
// the tree always matches upstream. A non-git tree in dir is replaced.
func (i *Installer) checkout(ctx context.Context) error {
	dir := i.repoDir
	git := func(args ...string) executor.Command {
		return executor.Command{Name: "git", Args: append([]string{"-C", dir}, args...)}
	}

	if isGitCheckout(dir) {
		logger.Info("Updating existing checkout in %s", dir)
		for _, c := range []executor.Command{
			git("fetch", "--prune", "origin"),
			git("remote", "set-head", "origin", "--auto"),
			git("reset", "--hard", "origin/HEAD"),
		} {
			if err := i.ex.Run(ctx, c); err != nil {
				return fmt.Errorf("failed to update %s: %w", dir, err)
			}
		}
		return nil
	}

	if _, err := os.Stat(dir); err == nil {
		// Left behind by an archive build or an interrupted clone.
		logger.Warn("%s is not a git checkout; replacing it with a fresh clone", dir)
		if i.ex.DryRun() {
			logger.Info("[dry-run] remove %s", dir)
		} else if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to clear %s: %w", dir, err)
		}
	}

	logger.Info("Cloning %s into %s", i.settings.RepoURL, dir)
	if !i.ex.DryRun() {
		if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(dir), err)
		}
	}
	if err := i.ex.Run(ctx, executor.Command{Name: "git", Args: []string{"clone", i.settings.RepoURL, dir}}); err != nil {
		return fmt.Errorf("failed to clone %s: %w", i.settings.RepoURL, err)
	}
	return nil
}

// unpackSource replaces repoDir with the contents of the source archive. The
// archive may be a local path or an http(s) URL.
func (i *Installer) unpackSource(ctx context.Context) error {
	src := i.sourceArchive
	if i.ex.DryRun() {
		logger.Info("[dry-run] unpack %s into %s", src, i.repoDir)
		return nil
	}

	parent := filepath.Dir(i.repoDir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", parent, err)
	}
	staging, err := os.MkdirTemp(parent, ".unpack-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if isRemote(src) {
		local := filepath.Join(staging, archiveName(src))
		logger.Info("Downloading %s", src)
		if err := downloadFile(ctx, src, local); err != nil {
			return err
		}
		src = local
	}

	logger.Info("Unpacking %s", src)
	tree, err := ExtractArchive(src, filepath.Join(staging, "tree"))
	if err != nil {
		return fmt.Errorf("failed to unpack %s: %w", i.sourceArchive, err)
	}

	if err := os.RemoveAll(i.repoDir); err != nil {
		return fmt.Errorf("failed to clear %s: %w", i.repoDir, err)
	}
	if err := os.Rename(tree, i.repoDir); err != nil {
		return fmt.Errorf("failed to move source into %s: %w", i.repoDir, err)
	}
	logger.Debug("Source tree ready in %s", i.repoDir)
	return nil
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// archiveName keeps the extension of a URL so ExtractArchive can pick a format.
func archiveName(url string) string {
	name := url
	if idx := strings.IndexAny(name, "?#"); idx >= 0 {
		name = name[:idx]
	}
	return "source-" + filepath.Base(name)
}

func hasMakefile(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "Makefile"))
	return err == nil
}
