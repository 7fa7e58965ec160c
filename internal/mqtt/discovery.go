package mqtt

// nodeID is the discovery-topic node grouping all entities.
const nodeID = "tariffsentinel"

// Device groups every announced entity under one Home Assistant device.
type Device struct {
	Identifiers      []string `json:"identifiers"`
	Name             string   `json:"name"`
	Manufacturer     string   `json:"manufacturer"`
	Model            string   `json:"model"`
	ConfigurationURL string   `json:"configuration_url,omitempty"`
}

// EntityConfig is one Home Assistant MQTT discovery payload.
type EntityConfig struct {
	Name              string `json:"name"`
	UniqueID          string `json:"unique_id"`
	StateTopic        string `json:"state_topic,omitempty"`
	CommandTopic      string `json:"command_topic,omitempty"`
	ValueTemplate     string `json:"value_template,omitempty"`
	DeviceClass       string `json:"device_class,omitempty"`
	UnitOfMeasurement string `json:"unit_of_measurement,omitempty"`
	StateClass        string `json:"state_class,omitempty"`
	PayloadOn         string `json:"payload_on,omitempty"`
	PayloadOff        string `json:"payload_off,omitempty"`
	PayloadPress      string `json:"payload_press,omitempty"`
	Device            Device `json:"device"`
}

// entity pairs a config payload with its discovery topic coordinates.
type entity struct {
	component string
	objectID  string
	config    EntityConfig
}

func deviceInfo() Device {
	return Device{
		Identifiers:      []string{nodeID},
		Name:             "INNOnet",
		Manufacturer:     "INNOnet",
		Model:            "Service API",
		ConfigurationURL: "https://app-innonnetwebtsm-dev.azurewebsites.net/",
	}
}

// entities lists every Home Assistant entity the daemon announces. All state
// entities read the retained JSON document on the state topic through value
// templates.
func entities(topicPrefix string) []entity {
	stateTopic := topicPrefix + "/state"
	commandTopic := topicPrefix + "/command"
	device := deviceInfo()

	priceSensor := func(objectID, name, field string) entity {
		return entity{
			component: "sensor",
			objectID:  objectID,
			config: EntityConfig{
				Name:              name,
				UniqueID:          nodeID + "_" + objectID,
				StateTopic:        stateTopic,
				ValueTemplate:     "{{ value_json." + field + " }}",
				DeviceClass:       "monetary",
				UnitOfMeasurement: "EUR/kWh",
				StateClass:        "total",
				Device:            device,
			},
		}
	}
	windowSensor := func(objectID, name, field string) entity {
		return entity{
			component: "sensor",
			objectID:  objectID,
			config: EntityConfig{
				Name:          name,
				UniqueID:      nodeID + "_" + objectID,
				StateTopic:    stateTopic,
				ValueTemplate: "{{ value_json." + field + " or none }}",
				DeviceClass:   "timestamp",
				Device:        device,
			},
		}
	}

	return []entity{
		priceSensor("grid_price", "Grid Price", "grid_price"),
		priceSensor("energy_tariff", "Energy Tariff", "energy_base"),
		priceSensor("energy_tariff_fee", "Energy Tariff Fee", "energy_fee"),
		priceSensor("energy_tariff_vat", "Energy Tariff VAT", "energy_vat"),
		priceSensor("total_price", "Total Price", "total_price"),
		windowSensor("next_sun_window_start", "Next Sun Window Start", "window_start"),
		windowSensor("next_sun_window_end", "Next Sun Window End", "window_end"),
		{
			component: "sensor",
			objectID:  "tariff_signal_code",
			config: EntityConfig{
				Name:          "Tariff Signal Code",
				UniqueID:      nodeID + "_tariff_signal_code",
				StateTopic:    stateTopic,
				ValueTemplate: "{{ value_json.signal }}",
				Device:        device,
			},
		},
		{
			component: "binary_sensor",
			objectID:  "tariff_signal",
			config: EntityConfig{
				Name:          "Tariff Signal",
				UniqueID:      nodeID + "_tariff_signal",
				StateTopic:    stateTopic,
				ValueTemplate: "{{ 'ON' if value_json.signal >= 1.0 else 'OFF' }}",
				DeviceClass:   "plug",
				PayloadOn:     "ON",
				PayloadOff:    "OFF",
				Device:        device,
			},
		},
		{
			component: "binary_sensor",
			objectID:  "sun_window_active",
			config: EntityConfig{
				Name:          "Sun Window Active",
				UniqueID:      nodeID + "_sun_window_active",
				StateTopic:    stateTopic,
				ValueTemplate: "{{ 'ON' if value_json.window_active else 'OFF' }}",
				PayloadOn:     "ON",
				PayloadOff:    "OFF",
				Device:        device,
			},
		},
		{
			component: "button",
			objectID:  "update_now",
			config: EntityConfig{
				Name:         "Update Now",
				UniqueID:     nodeID + "_update_now",
				CommandTopic: commandTopic,
				PayloadPress: "refresh",
				DeviceClass:  "update",
				Device:       device,
			},
		},
	}
}
