package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/engine"
)

// KindInfo describes one kind for `minigen kinds --json`.
type KindInfo struct {
	Name      string     `json:"name"`
	Key       string     `json:"key"`
	Seal      string     `json:"seal"`
	Reactive  bool       `json:"reactive,omitempty"`
	Rules     []string   `json:"rules,omitempty"`
	Roles     []RoleInfo `json:"roles"`
	SelfCheck bool       `json:"forbid_self_reference,omitempty"`
}

// RoleInfo describes one role of a kind.
type RoleInfo struct {
	Name       string   `json:"name"`
	Annotation string   `json:"annotation"`
	Required   bool     `json:"required"`
	Many       bool     `json:"many"`
	Elements   []string `json:"elements,omitempty"`
}

func describe(t *engine.KindTable) []KindInfo {
	var out []KindInfo
	for _, k := range t.Kinds() {
		seal := string(k.Seal)
		if seal == "" {
			seal = string(engine.SealFinal)
		}
		info := KindInfo{Name: k.Name, Key: k.KeyRule.String(), Seal: seal, Reactive: k.Reactive, SelfCheck: k.ForbidSelfReference}
		for _, r := range k.Rules {
			info.Rules = append(info.Rules, r.Name())
		}
		for _, r := range k.Roles {
			info.Roles = append(info.Roles, RoleInfo{
				Name: r.Name, Annotation: r.Annotation, Required: r.Required, Many: r.Many,
				Elements: elementNames(r.Elements),
			})
		}
		out = append(out, info)
	}
	return out
}

func elementNames(es []decl.ElementKind) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.String()
	}
	return out
}

// NewKindsCmd creates the kinds command.
func NewKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the generation kinds in use",
		Long: `Show every kind of the active kind table (built-in sets plus the tables
listed in kinds.tables) with its roles, annotations, key rule and seal
policy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			infos := describe(p.table)
			if shouldOutputJSON(cmd) {
				return outputJSON(cmd, infos)
			}

			data := pterm.TableData{{"Kind", "Role", "Annotation", "Required", "Many", "Elements", "Key", "Seal"}}
			for _, k := range infos {
				for i, r := range k.Roles {
					kind, key, seal := "", "", ""
					if i == 0 {
						kind, key, seal = k.Name, k.Key, k.Seal
					}
					data = append(data, []string{
						kind, r.Name, "//mini:" + r.Annotation, yesNo(r.Required), yesNo(r.Many),
						strings.Join(r.Elements, ","), key, seal,
					})
				}
			}
			return pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(data).Render()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
