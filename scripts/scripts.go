// Command scripts cuts ringtool releases.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

func must(err error) {
	if err != nil {
		fmt.Println(err)
		panic(err)
	}
}

type SemanticVersion struct {
	major int
	minor int
	patch int
}

var semVerRegex = regexp.MustCompile(`^v(\d+)\.(\d+)\.(\d+)$`)

func ParseSemVer(s string) (SemanticVersion, error) {
	res := semVerRegex.FindAllStringSubmatch(s, -1)
	var sv SemanticVersion

	if len(res) == 0 || len(res[0]) < 4 {
		return SemanticVersion{}, fmt.Errorf("invalid semantic version: '%s'", s)
	}

	var err error
	sv.major, err = strconv.Atoi(res[0][1])
	if err != nil {
		return sv, err
	}
	sv.minor, err = strconv.Atoi(res[0][2])
	if err != nil {
		return sv, err
	}
	sv.patch, err = strconv.Atoi(res[0][3])
	if err != nil {
		return sv, err
	}

	return sv, nil
}

func (sv SemanticVersion) NextMajor() SemanticVersion {
	return SemanticVersion{
		major: sv.major + 1,
		minor: 0,
		patch: 0,
	}
}

func (sv SemanticVersion) NextMinor() SemanticVersion {
	return SemanticVersion{
		major: sv.major,
		minor: sv.minor + 1,
		patch: 0,
	}
}

func (sv SemanticVersion) NextPatch() SemanticVersion {
	return SemanticVersion{
		major: sv.major,
		minor: sv.minor,
		patch: sv.patch + 1,
	}
}

func (sv SemanticVersion) String() string {
	return fmt.Sprintf("v%d.%d.%d", sv.major, sv.minor, sv.patch)
}

// BumpVersion resolves the -version argument against the current tag.
func BumpVersion(current SemanticVersion, arg string) (SemanticVersion, error) {
	switch arg {
	case "":
		return SemanticVersion{}, fmt.Errorf("-version is required with release")
	case "major":
		return current.NextMajor(), nil
	case "minor":
		return current.NextMinor(), nil
	case "patch":
		return current.NextPatch(), nil
	default:
		return ParseSemVer(arg)
	}
}

// Targets are the GOOS/GOARCH pairs a release is built for.
var Targets = [][2]string{
	{"linux", "amd64"},
	{"linux", "arm64"},
	{"linux", "arm"},
	{"darwin", "arm64"},
}

// LDFlags fills the build info variables of the main package.
func LDFlags(v SemanticVersion, built time.Time, commit string) string {
	return strings.Join([]string{
		"-X main.version=" + v.String(),
		"-X main.buildUnixTimestamp=" + strconv.FormatInt(built.Unix(), 10),
		"-X main.commitHash=" + commit,
	}, " ")
}

var (
	actionFlag  string
	versionFlag string
	distFlag    string
)

func main() {
	flag.StringVar(&actionFlag, "action", "", "Choose your action (build, release)")
	flag.StringVar(&versionFlag, "version", "", "Semver to bump (major, minor, patch) or an exact version (e.g. v1.2.3)")
	flag.StringVar(&distFlag, "dist", "dist", "Output directory for binaries")

	flag.Parse()

	switch actionFlag {
	case "":
		fmt.Println("An action is required")
		os.Exit(1)

	case "build":
		build(nextVersion())

	case "release":
		v := nextVersion()
		build(v)
		release(v)

	default:
		fmt.Printf("Invalid action: '%s'\n", actionFlag)
		os.Exit(1)
	}
}

func nextVersion() SemanticVersion {
	gitDescribe, err := exec.Command("git", "describe", "--abbrev=0").Output()
	must(err)
	currentVersionStr := strings.TrimSpace(string(gitDescribe))
	fmt.Println("Current version:", currentVersionStr)

	currentVersion, err := ParseSemVer(currentVersionStr)
	must(err)

	newVersion, err := BumpVersion(currentVersion, versionFlag)
	must(err)
	fmt.Println("New version:", newVersion)

	return newVersion
}

func build(v SemanticVersion) {
	commit, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	must(err)
	ldflags := LDFlags(v, time.Now(), strings.TrimSpace(string(commit)))

	must(os.MkdirAll(distFlag, 0755))
	for _, target := range Targets {
		out := filepath.Join(distFlag, fmt.Sprintf("ringtool-%s-%s-%s", v, target[0], target[1]))
		fmt.Println("Building", out)

		buildCmd := exec.Command("go", "build", "-trimpath", "-ldflags", ldflags, "-o", out, ".")
		buildCmd.Env = append(os.Environ(), "CGO_ENABLED=0", "GOOS="+target[0], "GOARCH="+target[1])
		buildCmd.Stdout = os.Stdout
		buildCmd.Stderr = os.Stderr
		must(buildCmd.Run())
	}
}

func release(v SemanticVersion) {
	fmt.Println("Cutting new release")

	assets, err := filepath.Glob(filepath.Join(distFlag, "ringtool-"+v.String()+"-*"))
	must(err)

	args := append([]string{"release", "create", v.String(), "--generate-notes"}, assets...)
	releaseCmd := exec.Command("gh", args...)
	releaseCmd.Stdout = os.Stdout
	releaseCmd.Stderr = os.Stderr
	must(releaseCmd.Run())
}
