package build

import (
	"context"
	"fmt"
	"strings"

	sqllib "github.com/fjord-labs/materialize/lib/sql"
)

// currentGrants fetches the standing grants on the table, keyed by lowercased
// privilege.
func (b *Builder) currentGrants(ctx context.Context, tableID sqllib.TableIdentifier) (map[string][]string, error) {
	rows, err := b.adapter.QueryContext(ctx, b.adapter.Dialect().BuildShowGrantsQuery(tableID))
	if err != nil {
		return nil, fmt.Errorf("failed to show grants: %w", err)
	}

	grants := make(map[string][]string)
	for _, row := range rows {
		principal := rowString(row, "principal", "Principal", "grantee")
		privilege := rowString(row, "action_type", "ActionType", "actionType", "privilege")
		if principal == "" || privilege == "" {
			continue
		}

		privilege = strings.ToLower(privilege)
		grants[privilege] = append(grants[privilege], principal)
	}

	return grants, nil
}

// applyGrants reconciles the standing grants with the configured ones. When
// revoke is false (new or fully rebuilt table), configured grants are applied
// outright without inspecting the current state.
func (b *Builder) applyGrants(ctx context.Context, tableID sqllib.TableIdentifier, configured map[string][]string, revoke bool) error {
	if len(configured) == 0 && !revoke {
		return nil
	}

	dialect := b.adapter.Dialect()
	if !revoke {
		for privilege, grantees := range configured {
			for _, grantee := range grantees {
				if err := b.adapter.ExecContext(ctx, dialect.BuildGrantQuery(tableID, privilege, grantee)); err != nil {
					return fmt.Errorf("failed to grant %s to %s: %w", privilege, grantee, err)
				}
			}
		}

		return nil
	}

	standing, err := b.currentGrants(ctx, tableID)
	if err != nil {
		return err
	}

	toGrant, toRevoke := diffGrants(configured, standing)
	for privilege, grantees := range toRevoke {
		for _, grantee := range grantees {
			if err := b.adapter.ExecContext(ctx, dialect.BuildRevokeQuery(tableID, privilege, grantee)); err != nil {
				return fmt.Errorf("failed to revoke %s from %s: %w", privilege, grantee, err)
			}
		}
	}

	for privilege, grantees := range toGrant {
		for _, grantee := range grantees {
			if err := b.adapter.ExecContext(ctx, dialect.BuildGrantQuery(tableID, privilege, grantee)); err != nil {
				return fmt.Errorf("failed to grant %s to %s: %w", privilege, grantee, err)
			}
		}
	}

	return nil
}

func diffGrants(configured, standing map[string][]string) (toGrant, toRevoke map[string][]string) {
	toGrant = make(map[string][]string)
	toRevoke = make(map[string][]string)

	for privilege, grantees := range configured {
		standingSet := toSet(standing[strings.ToLower(privilege)])
		for _, grantee := range grantees {
			if !standingSet[strings.ToLower(grantee)] {
				toGrant[strings.ToLower(privilege)] = append(toGrant[strings.ToLower(privilege)], grantee)
			}
		}
	}

	for privilege, grantees := range standing {
		configuredSet := toSet(configured[privilege])
		if len(configuredSet) == 0 {
			// Privileges may be configured with any casing.
			for configuredPrivilege, configuredGrantees := range configured {
				if strings.EqualFold(configuredPrivilege, privilege) {
					configuredSet = toSet(configuredGrantees)
					break
				}
			}
		}

		for _, grantee := range grantees {
			if !configuredSet[strings.ToLower(grantee)] {
				toRevoke[privilege] = append(toRevoke[privilege], grantee)
			}
		}
	}

	return toGrant, toRevoke
}

func toSet(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, value := range values {
		out[strings.ToLower(value)] = true
	}

	return out
}

func rowString(row sqllib.Row, keys ...string) string {
	for _, key := range keys {
		if value, isOk := row[key]; isOk && value != nil {
			return fmt.Sprint(value)
		}
	}

	return ""
}
