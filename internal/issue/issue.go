// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	GlslangNotConfiguredId Id = iota + 1
	ShaderValidationFailedId
	ScanDirNotFoundId
	AssetDirNotFoundId
	PDBMissingId
	ConfigLoadFailedId
	IncludeNotFoundId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the Markdown message, plus a "See also" section when links
// are present, with the given glamour style ("dark", "light", "auto", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	glslangNotConfiguredIssue = &Issue{
		id: GlslangNotConfiguredId,
		mdMsg: `
# Shader validation is not configured

kbuild needs to know where **glslangValidator** is installed before it can
link-check shaders. Validation was skipped; the build is not affected.

## To enable it
- Point ` + "`GLSLANG_PATH`" + ` at the directory containing the binary:
~~~
$ export GLSLANG_PATH=/opt/glslang/bin
~~~
- Or set it once in your kbuild config:
~~~cue
glslang: path: "/opt/glslang/bin"
~~~`,
		extLinks: []HttpLink{"https://github.com/KhronosGroup/glslang"},
	}

	shaderValidationFailedIssue = &Issue{
		id: ShaderValidationFailedId,
		mdMsg: `
# Some shader programs failed to link

Each failing program is listed above together with the compiler output.

## Things you can try
- Check that vertex outputs and fragment inputs match in name and type
- Make sure every ` + "`#include`" + ` resolves; pass extra directories with ` + "`--include-dir`" + `
- Inspect the fully expanded source:
~~~
$ kbuild shaders flatten path/to/shader.frag -I path/to/includes
~~~`,
	}

	scanDirNotFoundIssue = &Issue{
		id: ScanDirNotFoundId,
		mdMsg: `
# Shader directory not found

The directory passed with ` + "`--scan-dir`" + ` does not exist, so there is
nothing to validate.

## Things you can try
- Check the post-build step's working directory
- Pass an absolute path to ` + "`--scan-dir`",
	}

	assetDirNotFoundIssue = &Issue{
		id: AssetDirNotFoundId,
		mdMsg: `
# Engine asset directory not found

The asset path header could not be generated because the directory given to
` + "`--engine`" + ` does not exist after expanding environment variables.

## Things you can try
- Verify that the path points at ` + "`Engine/Engine/Asset`" + `
- Check that every ` + "`$VAR`" + ` in the path is set in the build environment`,
	}

	pdbMissingIssue = &Issue{
		id: PDBMissingId,
		mdMsg: `
# PDB file or output directory missing

Debug symbols for the third party libraries could not be copied.

## Things you can try
- Build the Debug configuration of GLFW and the Vendor project first
- Check that the output directory exists; it is never created by kbuild`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

The kbuild configuration file could not be parsed or did not match the schema.

## Things you can try
- Print the effective configuration:
~~~
$ kbuild config show
~~~
- Regenerate a default file with ` + "`kbuild config init`",
	}

	includeNotFoundIssue = &Issue{
		id: IncludeNotFoundId,
		mdMsg: `
# Shader include not found

An ` + "`#include`" + ` directive named a file that exists neither next to the
including shader nor in any include directory.

## Things you can try
- Add the directory holding the file with ` + "`-I`" + `
- Check the spelling and the ` + "`.glsl`" + ` extension of the include`,
	}

	issues = map[Id]*Issue{
		glslangNotConfiguredIssue.Id():   glslangNotConfiguredIssue,
		shaderValidationFailedIssue.Id(): shaderValidationFailedIssue,
		scanDirNotFoundIssue.Id():        scanDirNotFoundIssue,
		assetDirNotFoundIssue.Id():       assetDirNotFoundIssue,
		pdbMissingIssue.Id():             pdbMissingIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		includeNotFoundIssue.Id():        includeNotFoundIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
