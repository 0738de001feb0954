package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/oralable/oralable/internal/database/repository"
)

const devicesFile = "devices.json"

func devicesPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "oralable")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, devicesFile), nil
}

// SaveDevices exports remembered sensors so a fresh database can re-pair
// without a new scan.
func SaveDevices(devices []repository.Device) error {
	path, err := devicesPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(devices, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadDevices returns previously exported sensors, or nil when none exist.
func LoadDevices() ([]repository.Device, error) {
	path, err := devicesPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var devices []repository.Device
	if err := json.Unmarshal(data, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}
