package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigs(t *testing.T, extract, load string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "extract.yaml"), []byte(extract), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "load.yaml"), []byte(load), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

const validExtract = `
ads_type: jual
property_type: rumah
num_pages: 3
regions:
  - name: jakarta
    id: dki-jakarta
    admins: [Jakarta Selatan, Jakarta Barat]
  - name: jabar
    id: jawa-barat
    admins: [Bandung, Bekasi]
`

const validLoad = `
stg_table: stg_property_listings
main_table: property_listings
unique_key: link
batch_size: 50
`

func TestReadExtractConfig(t *testing.T) {
	dir := writeConfigs(t, validExtract, validLoad)

	ec, err := ReadExtractConfig(dir)
	if err != nil {
		t.Fatalf("ReadExtractConfig: %v", err)
	}

	if ec.AdsType != "jual" || ec.PropertyType != "rumah" || ec.NumPages != 3 {
		t.Errorf("unexpected config: %+v", ec)
	}
	if len(ec.Regions) != 2 {
		t.Fatalf("regions = %d; want 2", len(ec.Regions))
	}
	if ec.Regions[0].ID != "dki-jakarta" || len(ec.Regions[0].Admins) != 2 {
		t.Errorf("unexpected region: %+v", ec.Regions[0])
	}
}

func TestReadExtractConfigRejectsBadPages(t *testing.T) {
	dir := writeConfigs(t, `
ads_type: jual
property_type: rumah
num_pages: 0
regions:
  - name: jakarta
    id: dki-jakarta
`, validLoad)

	if _, err := ReadExtractConfig(dir); err == nil {
		t.Error("expected error for num_pages: 0")
	}
}

func TestReadLoadConfig(t *testing.T) {
	dir := writeConfigs(t, validExtract, validLoad)

	lc, err := ReadLoadConfig(dir)
	if err != nil {
		t.Fatalf("ReadLoadConfig: %v", err)
	}
	if lc.StagingTable != "stg_property_listings" || lc.ProductionTable != "property_listings" {
		t.Errorf("unexpected tables: %+v", lc)
	}
	if lc.UniqueKey != "link" || lc.BatchSize != 50 {
		t.Errorf("unexpected key/batch: %+v", lc)
	}
}

func TestReadLoadConfigDefaultsUniqueKey(t *testing.T) {
	dir := writeConfigs(t, validExtract, `
stg_table: stg_property_listings
main_table: property_listings
batch_size: 10
`)

	lc, err := ReadLoadConfig(dir)
	if err != nil {
		t.Fatalf("ReadLoadConfig: %v", err)
	}
	if lc.UniqueKey != "link" {
		t.Errorf("unique key should default to link, got %q", lc.UniqueKey)
	}
}

func TestReadLoadConfigRejectsBadBatchSize(t *testing.T) {
	dir := writeConfigs(t, validExtract, `
stg_table: stg_property_listings
main_table: property_listings
batch_size: -1
`)

	if _, err := ReadLoadConfig(dir); err == nil {
		t.Error("expected error for negative batch_size")
	}
}

func TestRegionLookup(t *testing.T) {
	dir := writeConfigs(t, validExtract, validLoad)
	ec, err := ReadExtractConfig(dir)
	if err != nil {
		t.Fatal(err)
	}

	r, err := ec.Region("jabar")
	if err != nil {
		t.Fatalf("Region(jabar): %v", err)
	}
	if r.ID != "jawa-barat" {
		t.Errorf("region id = %q; want jawa-barat", r.ID)
	}

	if _, err := ec.Region("bali"); err == nil {
		t.Error("expected error for unknown region")
	}
}
