package cmd

import "strings"

func rootLongHelp() string {
	return strings.TrimSpace(`
Fixes and checks the formatting of source files.

Every selected file gets trailing whitespace removed and tabs expanded to 4
columns, keeping its original line endings. On top of that:
- *.py: imports are sorted by the reflow command (isort by default), then the
  optional code server runs; with [tool.black] in pyproject.toml the batch
  formatter (black) handles all Python files instead
- C/C++ (*.c *.cpp *.h *.hpp *.hxx *.cxx *.cu): clang-format when a
  .clang-format file exists in the directory or above, whitespace only
  otherwise; non-ASCII content requires a UTF-8 BOM
- *.java *.js *.pyx *.pxd CMakeLists.txt *.cmake: whitespace only

Selecting files (first match wins):
1. --stdin: one path per line on standard input
2. --commit: staged, unstaged and untracked files from git
3. paths: files as given, directories walked recursively (.git and .hg are
   skipped, git-ignored files are left out)

Configuration (later wins):
- defaults
- pyproject.toml: [tool.fix-format] include/exclude, [tool.black] turns on the batch formatter
- .fix-format.yaml, or --config
- FIX_FORMAT_* environment variables

The reflow line length comes from the nearest .isort.cfg, pyproject.toml,
setup.cfg or tox.ini of each file, unless python.line_length or
FIX_FORMAT_LINE_LENGTH forces one. Below 80 it is reported as an error.

Exit codes:
- 0 success
- 1 errors were found, or with --check a file would be changed
- 2 usage or configuration error
`)
}

func rootExampleHelp() string {
	return strings.TrimSpace(`
  # fix everything under src/
  fix-format src/

  # check only, as in CI
  fix-format --check .

  # check the files changed in git
  fix-format -k -c

  # what the pre-commit hook runs
  git diff-index --diff-filter=ACM --name-only --cached HEAD | fix-format --check --stdin

  # machine-readable report
  fix-format --check src/ --format ndjson

  # install the pre-commit hook
  fix-format --git-hooks
`)
}
