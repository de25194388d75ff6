/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chazu/bindgraph/pkg/graph"
	"github.com/chazu/bindgraph/pkg/manifest"
	"github.com/chazu/bindgraph/pkg/typesig"
)

const widgetsManifest = `
name: "widgets"
classes: [
	{name: "QWidget", bases: ["QObject"], signatures: ["const QString&", "QWidget*"]},
	{name: "QObject", signatures: ["const char*", "QObject*"]},
	{name: "QString", signatures: ["const char*"]},
	{name: "QPushButton", bases: ["QWidget"], signatures: ["const QString &", "void (*)(bool)"]},
]
`

const cyclicManifest = `
classes: [
	{name: "A", signatures: ["B*"]},
	{name: "B", signatures: ["QList<A>"]},
	{name: "C"},
]
`

// run executes the root command with args and returns stdout and stderr
func run(args ...string) (string, string, error) {
	cmd := NewRootCommand()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeManifest(content string) string {
	path := filepath.Join(GinkgoT().TempDir(), "classes.cue")
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	return path
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

var _ = Describe("bindgraph", func() {
	Describe("parse", func() {
		It("prints the canonical form of each signature", func() {
			stdout, _, err := run("parse", "const Foo*&", "void (*)(int)", "Foo<Bar,Baz<int>>", "unsigned   int[4]")
			Expect(err).NotTo(HaveOccurred())
			Expect(lines(stdout)).To(Equal([]string{
				"const Foo*&",
				"<busted>",
				"Foo< Bar, Baz< int > >",
				"unsigned int[4]",
			}))
		})

		It("prints the parsed structure as JSON", func() {
			stdout, _, err := run("parse", "--json", "std::map<int, QString>*")
			Expect(err).NotTo(HaveOccurred())

			var results []parsedSignature
			Expect(json.Unmarshal([]byte(stdout), &results)).To(Succeed())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Signature).To(Equal("std::map<int, QString>*"))
			Expect(results[0].Canonical).To(Equal("std::map< int, QString >*"))
			Expect(results[0].Info.QualifiedName).To(Equal([]string{"std", "map"}))
			Expect(results[0].Info.Indirections).To(Equal(1))
			Expect(results[0].Info.TemplateInstantiations).To(HaveLen(2))
		})

		It("fails on characters that cannot appear in a signature", func() {
			_, _, err := run("parse", "int", "a % b")
			Expect(err).To(MatchError(typesig.ErrSyntax))
		})

		It("requires at least one signature", func() {
			_, _, err := run("parse")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("order", func() {
		It("prints classes dependency first", func() {
			stdout, _, err := run("order", "-f", writeManifest(widgetsManifest))
			Expect(err).NotTo(HaveOccurred())
			Expect(lines(stdout)).To(Equal([]string{"QString", "QObject", "QWidget", "QPushButton"}))
		})

		It("groups classes into waves", func() {
			stdout, _, err := run("order", "--waves", "-f", writeManifest(widgetsManifest))
			Expect(err).NotTo(HaveOccurred())
			Expect(lines(stdout)).To(Equal([]string{"QString QObject", "QWidget", "QPushButton"}))
		})

		It("reports the classes of a cycle", func() {
			_, _, err := run("order", "-f", writeManifest(cyclicManifest))
			Expect(err).To(MatchError(graph.ErrCycle))
			Expect(err.Error()).To(ContainSubstring("[A, B]"))
		})

		It("rejects manifests that do not match the schema", func() {
			_, _, err := run("order", "-f", writeManifest(`classes: [{title: "A"}]`))
			Expect(err).To(MatchError(manifest.ErrInvalid))
		})

		It("requires a manifest file", func() {
			_, _, err := run("order")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("dot", func() {
		It("writes the dependency graph to stdout", func() {
			stdout, _, err := run("dot", "-f", writeManifest(widgetsManifest))
			Expect(err).NotTo(HaveOccurred())
			Expect(stdout).To(ContainSubstring("digraph"))
			Expect(stdout).To(ContainSubstring(`label="QPushButton"`))
			// QObject (1) is emitted before QWidget (0)
			Expect(stdout).To(ContainSubstring(`"1" -> "0"`))
		})

		It("writes the dependency graph to a file", func() {
			output := filepath.Join(GinkgoT().TempDir(), "deps.dot")
			stdout, _, err := run("dot", "-f", writeManifest(widgetsManifest), "-o", output)
			Expect(err).NotTo(HaveOccurred())
			Expect(stdout).To(BeEmpty())

			data, err := os.ReadFile(output)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`label="QWidget"`))
		})
	})

	Describe("emit", func() {
		It("emits each class with normalized signatures in dependency order", func() {
			stdout, _, err := run("emit", "-f", writeManifest(widgetsManifest))
			Expect(err).NotTo(HaveOccurred())
			Expect(stdout).To(Equal(`class QString
  const char*
class QObject
  const char*
  QObject*
class QWidget : QObject
  const QString&
  QWidget*
class QPushButton : QWidget
  const QString&
  <busted>
`))
		})

		It("fails for a class missing from the manifest", func() {
			cache, err := typesig.NewCache(0)
			Expect(err).NotTo(HaveOccurred())

			emitter := newClassEmitter(&manifest.Manifest{}, cache)
			err = emitter.Emit(context.Background(), graph.Declaration{Name: "Missing"})
			Expect(err).To(MatchError(ContainSubstring("not in manifest")))

			_, ok := emitter.output("Missing")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("configuration", func() {
		It("reads settings from the environment", func() {
			Expect(os.Setenv("BINDGRAPH_MAX_CONCURRENCY", "0")).To(Succeed())
			DeferCleanup(os.Unsetenv, "BINDGRAPH_MAX_CONCURRENCY")

			_, _, err := run("parse", "int")
			Expect(err).To(MatchError(ContainSubstring("max-concurrency must be positive")))
		})

		It("lets flags override the environment", func() {
			Expect(os.Setenv("BINDGRAPH_CACHE_SIZE", "-1")).To(Succeed())
			DeferCleanup(os.Unsetenv, "BINDGRAPH_CACHE_SIZE")

			_, _, err := run("parse", "--cache-size", "16", "int")
			Expect(err).NotTo(HaveOccurred())
		})

		It("prints metrics on request", func() {
			_, stderr, err := run("parse", "--print-metrics", "int")
			Expect(err).NotTo(HaveOccurred())
			Expect(stderr).To(ContainSubstring("bindgraph_parse_total"))
		})

		It("logs at the requested verbosity", func() {
			_, stderr, err := run("order", "--v", "1", "-f", writeManifest(widgetsManifest))
			Expect(err).NotTo(HaveOccurred())
			Expect(stderr).To(ContainSubstring("Loaded manifest"))

			_, stderr, err = run("order", "-f", writeManifest(widgetsManifest))
			Expect(err).NotTo(HaveOccurred())
			Expect(stderr).NotTo(ContainSubstring("Loaded manifest"))
		})
	})
})
