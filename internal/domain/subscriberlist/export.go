package subscriberlist

import (
	"context"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/creatorhub/creatorhub-api/internal/domain/user"
)

const exportSheet = "Members"

var exportHeader = []string{"user_id", "username", "display_name", "user_type", "is_verified"}

// ExportMembers renders the list's resolved audience as an xlsx workbook.
// Rows follow member order; an id without a user record keeps its row with blank profile cells.
func (s *Service) ExportMembers(ctx context.Context, listID, creatorID int64) (string, []byte, error) {
	list, err := s.GetList(ctx, listID, creatorID)
	if err != nil {
		return "", nil, err
	}

	ids, err := s.ResolveMembers(ctx, list)
	if err != nil {
		return "", nil, err
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return "", nil, err
	}
	byID := make(map[int64]*user.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), exportSheet); err != nil {
		return "", nil, fmt.Errorf("export sheet: %w", err)
	}

	header := exportHeader
	if err := xl.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return "", nil, fmt.Errorf("export header: %w", err)
	}

	for i, id := range ids {
		record := []string{strconv.FormatInt(id, 10), "", "", "", ""}
		if u, ok := byID[id]; ok {
			record = []string{
				strconv.FormatInt(u.ID, 10),
				u.Username,
				u.DisplayName,
				string(u.UserType),
				strconv.FormatBool(u.IsVerified),
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", nil, err
		}
		if err := xl.SetSheetRow(exportSheet, cell, &record); err != nil {
			return "", nil, fmt.Errorf("export row: %w", err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("export write: %w", err)
	}
	return fmt.Sprintf("list_%d_members.xlsx", list.ID), buf.Bytes(), nil
}
