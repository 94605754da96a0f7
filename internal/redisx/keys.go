package redisx

import (
	"fmt"
	"time"
)

const (
	// order_status:{order_id} -> status id
	KeyOrderStatus = "order_status:%d"

	// branch:{branch_id}:orders, pub/sub channel for the branch dashboard
	ChannelBranchOrders = "branch:%d:orders"
)

var TTLStatusCache = 5 * time.Minute

func OrderStatusKey(orderID int64) string { return fmt.Sprintf(KeyOrderStatus, orderID) }

func BranchOrdersChannel(branchID int64) string { return fmt.Sprintf(ChannelBranchOrders, branchID) }
