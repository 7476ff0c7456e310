package service

import (
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// toAPIGroup converts a group; names fills member usernames when known.
func toAPIGroup(g *models.Group, names map[string]*models.User) api.Group {
	out := api.Group{
		ID:        g.ID,
		Name:      g.Name,
		CreatorID: g.CreatorID,
		AdminID:   g.Admin(),
		Members:   make([]api.Member, len(g.Members)),
		CreatedAt: g.CreatedAt,
	}
	for i, m := range g.Members {
		out.Members[i] = api.Member{UserID: m.UserID, Position: m.Position, JoinedAt: m.JoinedAt}
		if u, ok := names[m.UserID]; ok {
			out.Members[i].Username = u.Username
		}
	}
	return out
}

func toAPIEntry(e *models.Entry) api.Entry {
	out := api.Entry{
		ID:          e.ID,
		Kind:        string(e.Kind),
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Description: e.Description,
		Amount:      e.Amount,
		Strategy:    string(e.Strategy),
		Splits:      make([]api.Split, len(e.Splits)),
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
	for i, s := range e.Splits {
		out.Splits[i] = api.Split{UserID: s.UserID, Amount: s.Amount}
	}
	return out
}

func toAPIEntries(entries []models.Entry) []api.Entry {
	out := make([]api.Entry, len(entries))
	for i := range entries {
		out[i] = toAPIEntry(&entries[i])
	}
	return out
}

func toAPIBalances(list []calculator.CounterpartBalance) []api.Balance {
	out := make([]api.Balance, len(list))
	for i, b := range list {
		out[i] = api.Balance{CounterpartID: b.CounterpartID, Amount: b.Amount}
	}
	return out
}

func toAPIMemberBalances(list []calculator.MemberBalance) []api.MemberBalance {
	out := make([]api.MemberBalance, len(list))
	for i, mb := range list {
		out[i] = api.MemberBalance{UserID: mb.UserID, Paid: mb.Paid, Share: mb.Share, Net: mb.Net}
	}
	return out
}

func toAPINotification(n *models.Notification) api.Notification {
	return api.Notification{
		ID:         n.ID,
		UserID:     n.UserID,
		SenderID:   n.SenderID,
		Message:    n.Message,
		Type:       string(n.Type),
		Status:     string(n.Status),
		GroupID:    n.GroupID,
		CreatedAt:  n.CreatedAt,
		ResolvedAt: n.ResolvedAt,
	}
}

func toParticipants(in []api.Participant) []calculator.Participant {
	out := make([]calculator.Participant, len(in))
	for i, p := range in {
		out[i] = calculator.Participant{UserID: p.UserID, Included: p.Included, Value: p.Value.Decimal}
	}
	return out
}
