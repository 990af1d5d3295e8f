package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/flashcards/internal/utils"
)

// ErrNoMkdocsCommand is returned when no mkdocs command line is configured.
var ErrNoMkdocsCommand = errors.New("no mkdocs command configured")

// Builder runs mkdocs on a patched copy of the project configuration.
type Builder struct {
	ConfigPath string
	// Command is the mkdocs command line, split on whitespace.
	Command string
	// GitLabCI moves the output to the public/ directory GitLab Pages serves.
	GitLabCI bool
	Location *time.Location
	Stdout   io.Writer
	Stderr   io.Writer
}

// Build builds the site, stamping the footer with now.
func (b *Builder) Build(ctx context.Context, now time.Time) error {
	args := strings.Fields(b.Command)
	if len(args) == 0 {
		return ErrNoMkdocsCommand
	}

	config, err := b.patchedConfig(now)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.ConfigPath), ".mkdocs-*.yml")
	if err != nil {
		return fmt.Errorf("failed to create temporary mkdocs config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(config); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary mkdocs config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write temporary mkdocs config: %w", err)
	}

	args = append(args, "build", "-f", tmp.Name())
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = b.Stdout
	cmd.Stderr = b.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to build site: %w", err)
	}
	return nil
}

func (b *Builder) patchedConfig(now time.Time) ([]byte, error) {
	data, err := os.ReadFile(b.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read mkdocs config: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse mkdocs config: %w", err)
	}
	if len(doc.Content) == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("mkdocs config %s is not a mapping", b.ConfigPath)
	}

	stamp := "Dernière mise à jour : " + utils.FormatDatetime(now, b.Location)
	if copyright := mappingValue(root, "copyright"); copyright != nil && copyright.Value != "" {
		setMappingValue(root, "copyright", copyright.Value+"\n"+stamp)
	} else {
		setMappingValue(root, "copyright", stamp)
	}

	if b.GitLabCI {
		siteDir, err := filepath.Abs(filepath.Join(filepath.Dir(b.ConfigPath), "public"))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve site directory: %w", err)
		}
		setMappingValue(root, "site_dir", siteDir)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode mkdocs config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode mkdocs config: %w", err)
	}
	return buf.Bytes(), nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func setMappingValue(m *yaml.Node, key, value string) {
	if node := mappingValue(m, key); node != nil {
		*node = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
		return
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)
}
