// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/medichain/assist-tui/internal/session"
)

// HandleSessionCommand dispatches session maintenance subcommands.
func HandleSessionCommand(args Args) error {
	cfg, err := loadCLIConfig(args)
	if err != nil {
		return err
	}

	dir, err := cfg.SessionDir()
	if err != nil {
		return err
	}
	var store *session.Store
	if cfg.Session.Encrypt {
		store, err = session.NewEncryptedStore(dir)
	} else {
		store, err = session.NewStore(dir)
	}
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "list", "ls":
		return sessionList(store)
	case "export", "xuat":
		if len(args.SubArgs) == 0 {
			return NewValidationError("thiếu mã phiên: medichain-assist session export <id>")
		}
		return sessionExport(store, args.SubArgs[0])
	case "delete", "rm", "xoa":
		if len(args.SubArgs) == 0 {
			return NewValidationError("thiếu mã phiên: medichain-assist session delete <id>")
		}
		return sessionDelete(store, args.SubArgs[0])
	case "delete-all", "clear":
		return sessionDeleteAll(store)
	default:
		return NewValidationError("lệnh session không hợp lệ: %s (dùng list, export, delete, delete-all)", args.Subcommand)
	}
}

func sessionList(store *session.Store) error {
	sessions, err := store.List()
	if err != nil {
		return err
	}
	fmt.Print(session.FormatList(sessions))
	return nil
}

func sessionExport(store *session.Store, id string) error {
	if err := store.Load(id); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return &NotFoundError{Resource: "phiên trò chuyện", Name: id}
		}
		return err
	}
	fmt.Print(session.ExportMarkdown(store.Conversation()))
	return nil
}

func sessionDelete(store *session.Store, id string) error {
	if err := store.Delete(id); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return &NotFoundError{Resource: "phiên trò chuyện", Name: id}
		}
		return err
	}
	fmt.Printf("Đã xóa phiên %s.\n", id)
	return nil
}

func sessionDeleteAll(store *session.Store) error {
	if err := store.DeleteAll(); err != nil {
		return err
	}
	fmt.Println("Đã xóa tất cả phiên trò chuyện.")
	return nil
}
