package repository

import (
	"context"
	"database/sql"
)

// DeviceRepo handles remembered sensors.
type DeviceRepo struct {
	db *sql.DB
}

func NewDeviceRepo(db *sql.DB) *DeviceRepo {
	return &DeviceRepo{db: db}
}

// Upsert records a sensor seen during scanning, keyed by its 64-bit UUID.
// The uuid is stored as a signed integer (sqlite has no unsigned 64-bit
// column); the cast round-trips losslessly.
func (r *DeviceRepo) Upsert(ctx context.Context, d Device) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO devices(id, device_uuid, name, firmware, battery, last_seen)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(device_uuid) DO UPDATE SET
	 name=excluded.name,
	 firmware=excluded.firmware,
	 battery=excluded.battery,
	 last_seen=excluded.last_seen;
	`, d.ID, int64(d.DeviceUUID), d.Name, d.Firmware, d.Battery, d.LastSeen)
	return err
}

// List returns remembered sensors, most recently seen first.
func (r *DeviceRepo) List(ctx context.Context) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, device_uuid, name, firmware, battery, last_seen FROM devices ORDER BY last_seen DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Device
	for rows.Next() {
		var d Device
		var raw int64
		if err := rows.Scan(&d.ID, &raw, &d.Name, &d.Firmware, &d.Battery, &d.LastSeen); err != nil {
			return nil, err
		}
		d.DeviceUUID = uint64(raw)
		out = append(out, d)
	}
	return out, rows.Err()
}

// ByUUID returns a remembered sensor, or nil when unknown.
func (r *DeviceRepo) ByUUID(ctx context.Context, deviceUUID uint64) (*Device, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, device_uuid, name, firmware, battery, last_seen FROM devices WHERE device_uuid = ?`, int64(deviceUUID))
	var d Device
	var raw int64
	if err := row.Scan(&d.ID, &raw, &d.Name, &d.Firmware, &d.Battery, &d.LastSeen); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	d.DeviceUUID = uint64(raw)
	return &d, nil
}

// Forget removes a remembered sensor.
func (r *DeviceRepo) Forget(ctx context.Context, deviceUUID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE device_uuid = ?`, int64(deviceUUID))
	return err
}
