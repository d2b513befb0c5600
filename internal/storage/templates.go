package storage

// Template documents written on first use, mirroring the seed files the
// bot ships with.

const decisionsTemplate = `version: 0
decisions: []
`

const adminTemplate = `channels:
  dm: ""
  publish: ""
  notifications: ""
campaign:
  title: ""
  description: ""
  theme: []
`
