/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package task

import (
	"context"
	"errors"
	"sync"

	"github.com/Juice-Labs/borrow/pkg/logger"
)

type TaskFn = func(Group) error

type Task interface {
	Run(group Group) error
}

type Group interface {
	Ctx() context.Context
	Cancel()
	Go(name string, task Task)
	GoFn(name string, task TaskFn)
}

type Waiter interface {
	Wait() error
}

// TaskManager runs named tasks until the first one fails or the context is
// cancelled, then collects every task's error.
type TaskManager struct {
	ctx    context.Context
	cancel context.CancelFunc

	waitGroup *sync.WaitGroup

	mutex  sync.Mutex
	result error
}

func NewTaskManager(ctx context.Context) *TaskManager {
	ctx, cancel := context.WithCancel(ctx)

	return &TaskManager{
		ctx:       ctx,
		cancel:    cancel,
		waitGroup: &sync.WaitGroup{},
	}
}

func (group *TaskManager) Ctx() context.Context {
	return group.ctx
}

func (group *TaskManager) Cancel() {
	group.cancel()
}

// Wait blocks until the group is cancelled and every task has returned.
func (group *TaskManager) Wait() error {
	<-group.ctx.Done()
	group.waitGroup.Wait()

	group.mutex.Lock()
	defer group.mutex.Unlock()

	return group.result
}

func (group *TaskManager) Go(name string, task Task) {
	group.GoFn(name, task.Run)
}

func (group *TaskManager) GoFn(name string, task TaskFn) {
	group.waitGroup.Add(1)

	go group.run(name, task)
}

func (group *TaskManager) run(name string, task TaskFn) {
	defer group.waitGroup.Done()

	err := task(group)
	if err != nil {
		logger.Debugf("task %s failed, %v", name, err)
		group.cancel()

		group.mutex.Lock()
		group.result = errors.Join(group.result, err)
		group.mutex.Unlock()
	}
}
