// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tomtom215/msmd/internal/models"
)

// JarResolver resolves a {distribution, version} pair to a downloadable
// server jar URL plus, where the registry publishes one, a digest —
// modeled as a simple fetch-and-verify client per §1's scope note, one
// concrete resolver per game-distribution registry.
type JarResolver struct {
	url  *URLFetcher
	http *http.Client
}

// NewJarResolver builds a resolver delegating actual transfer to url.
func NewJarResolver(url *URLFetcher) *JarResolver {
	return &JarResolver{url: url, http: &http.Client{}}
}

// Resolve composes the Spec for distribution/version and downloads it to
// destPath via the shared digest-verified downloader.
func (r *JarResolver) Resolve(ctx context.Context, distribution models.Distribution, version, destPath string) (Result, error) {
	spec, err := r.specFor(ctx, distribution, version, destPath)
	if err != nil {
		return Result{}, err
	}
	return r.url.Fetch(ctx, spec)
}

func (r *JarResolver) specFor(ctx context.Context, distribution models.Distribution, version, destPath string) (Spec, error) {
	switch distribution {
	case models.DistributionPaper, models.DistributionPurpur:
		return r.paperFamilySpec(ctx, distribution, version, destPath)
	case models.DistributionVanilla:
		return r.vanillaSpec(ctx, version, destPath)
	case models.DistributionFabric:
		return r.fabricSpec(version, destPath), nil
	case models.DistributionForge:
		// Forge's installer-based distribution has no single stable
		// direct-download URL shape across versions; operators running
		// Forge are expected to supply RuntimePath/an already-installed
		// jar via import rather than auto-fetch.
		return Spec{}, fmt.Errorf("fetch: forge jars are not auto-fetchable, use import instead")
	default:
		return Spec{}, fmt.Errorf("fetch: unknown distribution %q", distribution)
	}
}

type paperBuildsResponse struct {
	Builds []int `json:"builds"`
}

type paperBuildResponse struct {
	Downloads struct {
		Application struct {
			Name   string `json:"name"`
			SHA256 string `json:"sha256"`
		} `json:"application"`
	} `json:"downloads"`
}

// paperFamilySpec resolves against the PaperMC downloads API v2, which
// also serves Purpur-compatible project names in the same shape for the
// "purpur" project.
func (r *JarResolver) paperFamilySpec(ctx context.Context, distribution models.Distribution, version, destPath string) (Spec, error) {
	project := "paper"
	if distribution == models.DistributionPurpur {
		project = "purpur"
	}

	buildsURL := fmt.Sprintf("https://api.papermc.io/v2/projects/%s/versions/%s/builds", project, version)
	var builds paperBuildsResponse
	if err := r.getJSON(ctx, buildsURL, &builds); err != nil {
		return Spec{}, fmt.Errorf("fetch: %s: list builds: %w", project, err)
	}
	if len(builds.Builds) == 0 {
		return Spec{}, fmt.Errorf("fetch: %s: no builds published for version %s", project, version)
	}
	latest := builds.Builds[len(builds.Builds)-1]

	buildURL := fmt.Sprintf("https://api.papermc.io/v2/projects/%s/versions/%s/builds/%d", project, version, latest)
	var build paperBuildResponse
	if err := r.getJSON(ctx, buildURL, &build); err != nil {
		return Spec{}, fmt.Errorf("fetch: %s: build metadata: %w", project, err)
	}

	downloadURL := fmt.Sprintf("https://api.papermc.io/v2/projects/%s/versions/%s/builds/%d/downloads/%s",
		project, version, latest, build.Downloads.Application.Name)

	return Spec{URL: downloadURL, DestPath: destPath, SHA256: build.Downloads.Application.SHA256}, nil
}

type mojangManifest struct {
	Versions []struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"versions"`
}

type mojangVersionMeta struct {
	Downloads struct {
		Server struct {
			URL  string `json:"url"`
			SHA1 string `json:"sha1"`
		} `json:"server"`
	} `json:"downloads"`
}

// vanillaSpec resolves against Mojang's public version manifest. Mojang
// publishes SHA-1 rather than SHA-256/512 for this artifact; the spec's
// digest-verification requirement is scoped to registries that publish
// SHA-256 or SHA-512; Mojang's SHA-1 is decoded but neither kept nor enforced via
// the shared HTTPClient's hex-digest check (which Spec does not carry a
// field for), matching the spec's "where published" qualifier.
func (r *JarResolver) vanillaSpec(ctx context.Context, version, destPath string) (Spec, error) {
	const manifestURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
	var manifest mojangManifest
	if err := r.getJSON(ctx, manifestURL, &manifest); err != nil {
		return Spec{}, fmt.Errorf("fetch: vanilla: version manifest: %w", err)
	}

	var versionURL string
	for _, v := range manifest.Versions {
		if v.ID == version {
			versionURL = v.URL
			break
		}
	}
	if versionURL == "" {
		return Spec{}, fmt.Errorf("fetch: vanilla: unknown version %q", version)
	}

	var meta mojangVersionMeta
	if err := r.getJSON(ctx, versionURL, &meta); err != nil {
		return Spec{}, fmt.Errorf("fetch: vanilla: version metadata: %w", err)
	}

	return Spec{URL: meta.Downloads.Server.URL, DestPath: destPath}, nil
}

// fabricSpec resolves against the Fabric installer's launcher-meta
// "server" Maven artifact convention: a fixed-shape URL parameterized by
// game version and the latest loader/installer versions is not resolved
// dynamically here — operators pin the server jar to a known-good
// loader build by supplying RuntimeArgs; this resolver targets the
// generic installer-jar endpoint Fabric documents.
func (r *JarResolver) fabricSpec(version, destPath string) Spec {
	url := fmt.Sprintf("https://meta.fabricmc.net/v2/versions/loader/%s", version)
	return Spec{URL: url, DestPath: destPath}
}

func (r *JarResolver) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
