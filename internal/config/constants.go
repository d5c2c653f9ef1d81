package config

import "time"

const AppName = "logopreview"
const DefaultConfigFileName = "config.toml"
const DefaultLogFileName = "logopreview.log"

// Render service
const DefaultServerURL = "http://localhost:5000"
const DefaultTimeout = 30 * time.Second

// Preview behaviour
const DefaultDebounce = 300 * time.Millisecond
const DefaultMaxUploadMB = 16

// Slider ranges of the web form
const DefaultOffsetMin = -500
const DefaultOffsetMax = 500
const DefaultOffsetStep = 10
const DefaultScaleMin = 0.2
const DefaultScaleMax = 3.0
const DefaultScaleStep = 0.05
