// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package corporate_blue

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/olegiv/corporate-blue/internal/files"
	"github.com/olegiv/corporate-blue/internal/imaging"
	"github.com/olegiv/corporate-blue/internal/settings"
)

// defaultBannerCount is the number of slide images shipped with the theme.
const defaultBannerCount = 3

// EnsureInstalled runs the installer while the first-install flag is set.
// The flag defaults to true when unset.
func (m *Module) EnsureInstalled(ctx context.Context) error {
	first, err := settings.GetBool(ctx, m.ctx.Settings, KeyFirstInstall, true)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}
	return m.Install(ctx)
}

// Install seeds the default banners and clears the first-install flag.
// Banners are written only when none are stored, so running it again
// leaves existing banners untouched.
func (m *Module) Install(ctx context.Context) error {
	m.installMu.Lock()
	defer m.installMu.Unlock()

	existing, revision, err := m.GetBannersVersioned(ctx)
	if err != nil {
		return fmt.Errorf("install: %w", err)
	}

	if len(existing) == 0 {
		banners := m.copyDefaultBanners()
		_, err := m.SetBannersIfRevision(ctx, banners, revision)
		switch {
		case errors.Is(err, settings.ErrVersionConflict):
			m.ctx.Logger.Info("banners changed during install, keeping stored banners")
		case err != nil:
			return fmt.Errorf("install: %w", err)
		default:
			m.ctx.Logger.Info("installed default banners", "count", len(banners))
		}
	}

	if err := settings.SetBool(ctx, m.ctx.Settings, KeyFirstInstall, false); err != nil {
		return fmt.Errorf("install: %w", err)
	}
	return nil
}

// copyDefaultBanners copies the theme's slide images into the public files
// directory and returns their records. A slide that cannot be copied is
// logged and still returned.
func (m *Module) copyDefaultBanners() []Banner {
	processor := imaging.NewBannerProcessor()
	banners := make([]Banner, 0, defaultBannerCount)

	for i := 1; i <= defaultBannerCount; i++ {
		name := fmt.Sprintf("slide-image-%d.png", i)
		ref := files.PublicRef(bannerDir, name)
		banners = append(banners, Banner{
			ImagePath: ref,
			ImageURL:  "#",
			Active:    true,
			Weight:    i - 1,
		})

		if m.ctx.Themes == nil {
			continue
		}
		data, err := m.ctx.Themes.ReadStatic(ThemeName, "images/banners/"+name)
		if err != nil {
			m.ctx.Logger.Warn("default banner image missing", "image", name, "error", err)
			continue
		}
		dest, err := m.ctx.Files.LocalPath(ref)
		if err != nil {
			m.ctx.Logger.Warn("invalid banner destination", "ref", ref, "error", err)
			continue
		}
		if _, err := processor.Process(bytes.NewReader(data), dest); err != nil {
			m.ctx.Logger.Warn("failed to copy default banner", "image", name, "error", err)
		}
	}
	return banners
}
