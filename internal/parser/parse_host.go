package parser

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/objectives/internal/geo"
	"github.com/OCAP2/objectives/internal/util"
	"github.com/OCAP2/objectives/pkg/core"
)

// ParseTick parses [tick, participants] where participants is a JSON list of
// [slot, x, y, z]. The participant list is optional.
func (p *Parser) ParseTick(data []string) (core.Tick, error) {
	var result core.Tick
	data, err := clean(data, 1)
	if err != nil {
		return result, err
	}

	result.Number, err = parseUintFromFloat(data[0])
	if err != nil {
		return result, fmt.Errorf("error parsing tick: %w", err)
	}

	raw := arg(data, 1)
	if raw == "" {
		return result, nil
	}
	var rows [][]float64
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return result, fmt.Errorf("error parsing participants: %w", err)
	}
	for _, row := range rows {
		if len(row) < 4 {
			p.logger.Warn("Invalid participant row", "value", row)
			continue
		}
		result.Participants = append(result.Participants, core.Participant{
			Slot:     int(row[0]),
			Position: core.Position3D{X: row[1], Y: row[2], Z: row[3]},
		})
	}
	return result, nil
}

// ParseEntityEvent parses [entityID, className].
func (p *Parser) ParseEntityEvent(data []string) (core.EntityEvent, error) {
	var result core.EntityEvent
	data, err := clean(data, 2)
	if err != nil {
		return result, err
	}
	result.EntityID, err = parseInt(data[0])
	if err != nil {
		return result, fmt.Errorf("error parsing entityID: %w", err)
	}
	result.Class = data[1]
	return result, nil
}

// ParseLineActivated parses [special, slot, line].
func (p *Parser) ParseLineActivated(data []string) (core.LineActivated, error) {
	var result core.LineActivated
	data, err := clean(data, 1)
	if err != nil {
		return result, err
	}
	if result.Special, err = parseInt(data[0]); err != nil {
		return result, fmt.Errorf("error parsing special: %w", err)
	}
	if result.Slot, err = intOr(arg(data, 1), 0); err != nil {
		return result, fmt.Errorf("error parsing slot: %w", err)
	}
	if result.Line, err = intOr(arg(data, 2), -1); err != nil {
		return result, fmt.Errorf("error parsing line: %w", err)
	}
	return result, nil
}

// ParseLevelLoaded parses [map, restored, skill].
func (p *Parser) ParseLevelLoaded(data []string) (core.LevelLoaded, error) {
	var result core.LevelLoaded
	data, err := clean(data, 1)
	if err != nil {
		return result, err
	}
	result.Map = data[0]
	if result.Map == "" {
		return result, fmt.Errorf("%w: empty map name", ErrMissingArgs)
	}
	if result.Restored, err = util.ParseBool(arg(data, 1)); err != nil {
		return result, fmt.Errorf("error parsing restored: %w", err)
	}
	if result.Skill, err = intOr(arg(data, 2), 0); err != nil {
		return result, fmt.Errorf("error parsing skill: %w", err)
	}
	return result, nil
}

// ParseNetEvent parses [name, slot, args...].
func (p *Parser) ParseNetEvent(data []string) (core.NetEvent, error) {
	var result core.NetEvent
	data, err := clean(data, 2)
	if err != nil {
		return result, err
	}
	result.Name = data[0]
	if result.Slot, err = parseInt(data[1]); err != nil {
		return result, fmt.Errorf("error parsing slot: %w", err)
	}
	result.Args = append([]string{}, data[2:]...)
	return result, nil
}

// ParseFrame parses [slot, camera, viewport] where camera is
// [x, y, z, yaw, pitch, roll, fov] and viewport is [width, height].
func (p *Parser) ParseFrame(data []string) (core.Frame, error) {
	var result core.Frame
	data, err := clean(data, 3)
	if err != nil {
		return result, err
	}
	if result.Slot, err = parseInt(data[0]); err != nil {
		return result, fmt.Errorf("error parsing slot: %w", err)
	}

	var cam []float64
	if err := json.Unmarshal([]byte(data[1]), &cam); err != nil {
		return result, fmt.Errorf("error parsing camera: %w", err)
	}
	if len(cam) < 7 {
		return result, fmt.Errorf("error parsing camera: got %d values, need 7", len(cam))
	}
	result.Camera = core.CameraPose{
		Position: core.Position3D{X: cam[0], Y: cam[1], Z: cam[2]},
		Yaw:      cam[3],
		Pitch:    cam[4],
		Roll:     cam[5],
		FOV:      cam[6],
	}

	vp, err := geo.Position3DFromString(data[2])
	if err != nil {
		return result, fmt.Errorf("error parsing viewport: %w", err)
	}
	result.Viewport = core.Viewport{Width: vp.X, Height: vp.Y}
	return result, nil
}
