//go:build ceph

package main

import "github.com/sagarc03/stowgate/rados"

func init() {
	drivers["rados"] = rados.Driver{}
}
